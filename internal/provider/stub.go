package provider

import (
	"context"
	"strconv"
	"strings"
)

// StubClient returns deterministic canned responses so the API remains
// exercisable without provider credentials.
type StubClient struct{}

func (s *StubClient) Generate(_ context.Context, p GenerateParams) (*Result, error) {
	lang := "go"
	if strings.Contains(strings.ToLower(p.UserPrompt), "python") {
		lang = "python"
	}

	var body string
	switch lang {
	case "python":
		body = "def generated():\n    return \"stub\"\n"
	default:
		body = "package main\n\nfunc Generated() string {\n\treturn \"stub\"\n}\n"
	}

	content := "Here is a stub implementation.\n\n```" + lang + "\n" + body + "```\n"
	return &Result{ModelUsed: "stub", Content: content}, nil
}

func (s *StubClient) Chat(_ context.Context, messages []Message) (*Result, error) {
	content := "Stub assistant reply covering " + strconv.Itoa(len(messages)) + " input messages.\n\n" +
		"```go filename=stub.go\npackage stub\n```\n" +
		"```md\n# Notes\nGenerated without a configured provider.\n```\n"
	return &Result{ModelUsed: "stub", Content: content}, nil
}
