package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yangwenmai/codeforge/internal/artifact"
	"github.com/yangwenmai/codeforge/internal/config"
	"github.com/yangwenmai/codeforge/internal/model"
	"github.com/yangwenmai/codeforge/internal/project"
	"github.com/yangwenmai/codeforge/internal/provider"
)

// ChatRequest is one chat-with-memory turn against a named project.
type ChatRequest struct {
	Project    string       `json:"project"`
	SystemRole string       `json:"systemRole,omitempty"`
	Prompt     string       `json:"prompt"`
	Images     []string     `json:"images,omitempty"`    // filenames under the project's images/ dir
	CodeFiles  []string     `json:"codeFiles,omitempty"` // relative paths under inputcode/
	DocURLs    []string     `json:"docUrls,omitempty"`
	Options    *ChatOptions `json:"options,omitempty"`
}

// ChatOptions overrides the configured parsing policy for this turn.
type ChatOptions struct {
	ParsingMode       string `json:"parsingMode,omitempty"`
	CodeFenceRequired *bool  `json:"codeFenceRequired,omitempty"`
}

// ChatResponse is the result of one chat turn.
type ChatResponse struct {
	ID             string                `json:"id"`
	Status         string                `json:"status"` // OK | FAILED
	ModelUsed      string                `json:"modelUsed,omitempty"`
	MessageContent string                `json:"messageContent,omitempty"`
	SavedArtifacts []model.SavedArtifact `json:"savedArtifacts"`
	Notes          string                `json:"notes,omitempty"`
	Error          *string               `json:"error,omitempty"`
}

// noContentMarker stands in for an empty assistant reply so a turn is still
// recorded in conversation history.
const noContentMarker = "(no content)"

// ChatPipeline runs multi-turn chat requests with per-project memory.
type ChatPipeline struct {
	chat provider.ChatClient
	docs project.DocFetcher
	cfg  config.Config
	jobs JobRecorder
}

// NewChatPipeline creates a ChatPipeline. docs and jobs may be nil; a nil
// docs fetcher disables docUrls resolution.
func NewChatPipeline(chat provider.ChatClient, docs project.DocFetcher, cfg config.Config, jobs JobRecorder) *ChatPipeline {
	return &ChatPipeline{chat: chat, docs: docs, cfg: cfg, jobs: jobs}
}

// Process runs one chat turn to completion. Like Generator.Process, it never
// returns an error: failures are folded into the response.
func (p *ChatPipeline) Process(ctx context.Context, req ChatRequest) ChatResponse {
	resp := p.process(ctx, req)
	p.record(ctx, req, resp)
	return resp
}

func (p *ChatPipeline) process(ctx context.Context, req ChatRequest) ChatResponse {
	id := uuid.NewString()

	if strings.TrimSpace(req.Project) == "" {
		return chatFailed(id, model.CodeBadRequest, "project is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return chatFailed(id, model.CodeBadRequest, "prompt is required")
	}

	dirs, err := project.Layout(p.cfg.FilesBaseDir, req.Project)
	if err != nil {
		return chatFailed(id, model.CodeInternalError, err.Error())
	}

	history := project.LoadConversation(dirs.Conversation)
	var notes []string

	messages, skipped := p.buildMessages(ctx, req, dirs, history)
	notes = append(notes, skipped...)

	result, err := p.chat.Chat(ctx, messages)
	if err != nil {
		return chatFailed(id, classify(err, model.CodeProviderError), err.Error())
	}

	assistantText := result.Content
	if assistantText == "" {
		assistantText = noContentMarker
	}

	saved := p.saveArtifacts(assistantText, dirs.Generated, req.Options)
	if len(saved) == 0 {
		notes = append(notes, "no code fences found in response")
	}

	if err := project.AppendConversation(dirs.Conversation, req.Prompt, assistantText); err != nil {
		// The reply already happened; losing one history entry is worth
		// flagging but not failing the whole turn over.
		slog.Warn("append conversation", "project", req.Project, "error", err)
		notes = append(notes, "conversation history not updated: "+err.Error())
	}

	return ChatResponse{
		ID:             id,
		Status:         model.StatusOK,
		ModelUsed:      result.ModelUsed,
		MessageContent: assistantText,
		SavedArtifacts: saved,
		Notes:          strings.Join(notes, "; "),
	}
}

// buildMessages assembles the outgoing message sequence: a persona system
// message, the prior conversation flattened to plain turns, then a single
// multi-part user turn carrying context, referenced code, referenced docs,
// the prompt, and any images found on disk.
func (p *ChatPipeline) buildMessages(ctx context.Context, req ChatRequest, dirs project.Dirs, history []model.ConversationTurn) ([]provider.Message, []string) {
	var notes []string

	role := strings.TrimSpace(req.SystemRole)
	if role == "" {
		role = "a helpful coding assistant"
	}
	system := fmt.Sprintf("Act as: %s. Be precise, structured, and include code fences for any code.", role)

	messages := []provider.Message{{Role: "system", Content: system}}
	for _, turn := range history {
		messages = append(messages, provider.Message{Role: turn.Role, Content: turn.Content})
	}

	parts := []provider.ContentPart{provider.TextPart(p.cfg.ContextBrief)}

	if len(history) > 0 {
		if blob, err := json.MarshalIndent(history, "", "  "); err == nil {
			parts = append(parts, provider.TextPart("Prior conversation:\n"+string(blob)))
		}
	}

	if combined := project.CombineInputCode(dirs.InputCode, req.CodeFiles); combined != "" {
		parts = append(parts, provider.TextPart("Referenced code:\n"+combined))
	}

	if len(req.DocURLs) > 0 && p.docs != nil {
		if combined := project.CombineDocs(ctx, p.docs, req.DocURLs); combined != "" {
			parts = append(parts, provider.TextPart("Referenced documents:\n"+combined))
		}
	}

	parts = append(parts, provider.TextPart(req.Prompt))

	for _, name := range req.Images {
		path := filepath.Join(dirs.Images, filepath.FromSlash(name))
		if _, err := os.Stat(path); err != nil {
			notes = append(notes, "image skipped: "+name)
			continue
		}
		dataURL, err := fileDataURL(path)
		if err != nil {
			notes = append(notes, "image skipped: "+name)
			continue
		}
		parts = append(parts, provider.ImagePart(dataURL))
	}

	messages = append(messages, provider.Message{Role: "user", Content: parts})
	return messages, notes
}

// saveArtifacts persists the response's code blocks into the project's
// generated-code directory. In text mode the entire reply is stored as one
// markdown artifact instead.
func (p *ChatPipeline) saveArtifacts(assistantText, dir string, opts *ChatOptions) []model.SavedArtifact {
	mode := p.cfg.ParsingMode
	if opts != nil && opts.ParsingMode != "" {
		mode = opts.ParsingMode
	}

	if strings.EqualFold(mode, "text") {
		filename := "snippet-001.md"
		savedPath, err := artifact.Save(dir, "", filename, assistantText)
		if err != nil {
			slog.Warn("save chat artifact", "filename", filename, "error", err)
			return []model.SavedArtifact{}
		}
		return []model.SavedArtifact{{
			Filename:  filepath.Base(savedPath),
			Language:  "markdown",
			SavedPath: savedPath,
		}}
	}

	return artifact.SaveAll(assistantText, dir)
}

func (p *ChatPipeline) record(ctx context.Context, req ChatRequest, resp ChatResponse) {
	if p.jobs == nil {
		return
	}
	rec := model.NewJobRecord(resp.ID, model.JobChat, p.cfg.ChatProvider)
	rec.ModelUsed = resp.ModelUsed
	rec.Status = resp.Status
	rec.ErrorCode = resp.Error
	rec.Message = resp.Notes
	for _, a := range resp.SavedArtifacts {
		rec.SavedPaths = append(rec.SavedPaths, a.SavedPath)
	}
	if err := p.jobs.CreateJob(ctx, rec); err != nil {
		slog.Warn("record chat job", "job_id", resp.ID, "error", err)
	}
}

func chatFailed(id, code, message string) ChatResponse {
	return ChatResponse{
		ID:             id,
		Status:         model.StatusFailed,
		MessageContent: message,
		SavedArtifacts: []model.SavedArtifact{},
		Error:          &code,
	}
}
