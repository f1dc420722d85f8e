// Package engine orchestrates the generation pipelines: resolve a provider,
// call it, parse the response into savable content, persist it, and record
// the job. Every failure is converted into a structured result at this
// boundary; no raw error reaches the HTTP layer.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yangwenmai/codeforge/internal/artifact"
	"github.com/yangwenmai/codeforge/internal/codeparse"
	"github.com/yangwenmai/codeforge/internal/config"
	"github.com/yangwenmai/codeforge/internal/model"
	"github.com/yangwenmai/codeforge/internal/provider"
)

// Policy defaults applied when a request supplies no override.
const (
	defaultTemperature     = 0.2
	defaultMaxOutputTokens = 4096
)

// GenerateRequest is one single-turn generation job.
type GenerateRequest struct {
	ID        string          `json:"id"`
	Prompt    string          `json:"prompt"`
	Image     *ImageRef       `json:"image,omitempty"`
	Provider  string          `json:"provider,omitempty"`
	Overrides *Overrides      `json:"overrides,omitempty"`
	Metadata  *Metadata       `json:"metadata,omitempty"`
	Parsing   *ParsingOptions `json:"parsing,omitempty"`
}

// ImageRef points at a reference image: a local path or an HTTPS URL.
type ImageRef struct {
	Path string `json:"path"`
}

// Overrides carries per-request provider tuning.
type Overrides struct {
	Model           string   `json:"model,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	SystemPrompt    string   `json:"systemPrompt,omitempty"`
}

// Metadata carries persistence hints.
type Metadata struct {
	Filename string `json:"filename,omitempty"`
	Subdir   string `json:"subdir,omitempty"`
	Language string `json:"language,omitempty"`
}

// ParsingOptions overrides the configured response-parsing policy.
type ParsingOptions struct {
	Mode              string `json:"mode,omitempty"` // "code" | "text" | "auto"
	CodeFenceRequired *bool  `json:"codeFenceRequired,omitempty"`
}

// GenerateResponse is the structured result of a generation job.
type GenerateResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"` // OK | NO_CODE_FOUND | FAILED
	ModelUsed string  `json:"modelUsed,omitempty"`
	SavedFile *string `json:"savedFile"`
	Message   string  `json:"message"`
	Error     *string `json:"error"`
}

// JobRecorder persists job ledger entries. Recording failures never fail the
// job itself.
type JobRecorder interface {
	CreateJob(ctx context.Context, rec model.JobRecord) error
}

// Generator runs single-turn generation jobs.
type Generator struct {
	registry *provider.Registry
	cfg      config.Config
	jobs     JobRecorder
}

// NewGenerator creates a Generator. jobs may be nil to disable the ledger.
func NewGenerator(registry *provider.Registry, cfg config.Config, jobs JobRecorder) *Generator {
	return &Generator{registry: registry, cfg: cfg, jobs: jobs}
}

// Process runs one job to a terminal state. It never returns an error: every
// failure is folded into the response status and error code.
func (g *Generator) Process(ctx context.Context, req GenerateRequest) GenerateResponse {
	resp := g.process(ctx, req)
	g.record(ctx, req, resp)
	return resp
}

func (g *Generator) process(ctx context.Context, req GenerateRequest) GenerateResponse {
	if strings.TrimSpace(req.Prompt) == "" {
		return failed(req.ID, model.CodeBadRequest, "prompt is required")
	}
	if strings.TrimSpace(req.ID) == "" {
		return failed(req.ID, model.CodeBadRequest, "id is required")
	}

	client := g.registry.Resolve(req.Provider)
	if client == nil {
		return failed(req.ID, model.CodeBadRequest, "unknown provider: "+req.Provider)
	}

	imageURL, err := g.buildImageURL(req)
	if err != nil {
		return failed(req.ID, classify(err, model.CodeCodegenError), err.Error())
	}

	params := provider.GenerateParams{
		UserPrompt:      req.Prompt,
		ImageURL:        imageURL,
		SystemPrompt:    g.cfg.SystemPrompt,
		Temperature:     defaultTemperature,
		MaxOutputTokens: defaultMaxOutputTokens,
	}
	if o := req.Overrides; o != nil {
		params.Model = o.Model
		if o.SystemPrompt != "" {
			params.SystemPrompt = o.SystemPrompt
		}
		if o.Temperature != nil {
			params.Temperature = *o.Temperature
		}
		if o.MaxOutputTokens != nil {
			params.MaxOutputTokens = *o.MaxOutputTokens
		}
	}

	result, err := client.Generate(ctx, params)
	if err != nil {
		return failed(req.ID, classify(err, model.CodeProviderError), err.Error())
	}
	if result.Content == "" {
		return failed(req.ID, model.CodeProviderError, "empty response from provider")
	}

	mode, fenceRequired := g.resolveParsing(req.Parsing)
	preferredLang := ""
	if req.Metadata != nil {
		preferredLang = req.Metadata.Language
	}

	block := applyPolicy(result.Content, mode, fenceRequired, preferredLang)
	if block == nil {
		code := model.CodeParseError
		return GenerateResponse{
			ID:        req.ID,
			Status:    model.StatusNoCodeFound,
			ModelUsed: result.ModelUsed,
			Message:   "No fenced code block found in response",
			Error:     &code,
		}
	}

	filename, subdir := "", ""
	if req.Metadata != nil {
		filename = strings.TrimSpace(req.Metadata.Filename)
		subdir = req.Metadata.Subdir
	}
	if filename == "" {
		filename = req.ID + codeparse.ExtensionFor(block.Language)
	}

	savedPath, err := artifact.Save(g.cfg.OutputDir, subdir, filename, block.Content)
	if err != nil {
		resp := failed(req.ID, model.CodeInternalError, err.Error())
		resp.ModelUsed = result.ModelUsed
		return resp
	}

	langLabel := block.Language
	if langLabel == "" {
		langLabel = "text"
	}
	return GenerateResponse{
		ID:        req.ID,
		Status:    model.StatusOK,
		ModelUsed: result.ModelUsed,
		SavedFile: &savedPath,
		Message:   "Saved " + langLabel + " to " + filepath.Base(savedPath),
	}
}

// resolveParsing applies the per-request override over the configured default.
func (g *Generator) resolveParsing(p *ParsingOptions) (mode string, fenceRequired bool) {
	mode = g.cfg.ParsingMode
	fenceRequired = g.cfg.CodeFenceRequired
	if p != nil {
		if p.Mode != "" {
			mode = p.Mode
		}
		if p.CodeFenceRequired != nil {
			fenceRequired = *p.CodeFenceRequired
		}
	}
	return mode, fenceRequired
}

// applyPolicy decides what content block to persist. A nil return means code
// was required and none was found.
func applyPolicy(text, mode string, fenceRequired bool, preferredLang string) *codeparse.Block {
	fullText := func() *codeparse.Block {
		lang := preferredLang
		if lang == "" {
			lang = "markdown"
		}
		return &codeparse.Block{Language: lang, Content: text}
	}

	switch strings.ToLower(mode) {
	case "text":
		return fullText()
	case "code":
		block := codeparse.FirstBlock(text, preferredLang)
		if block == nil && fenceRequired {
			return nil
		}
		if block == nil {
			return fullText()
		}
		return block
	default: // auto
		if block := codeparse.FirstBlock(text, preferredLang); block != nil {
			return block
		}
		return fullText()
	}
}

func (g *Generator) buildImageURL(req GenerateRequest) (string, error) {
	if req.Image == nil {
		return "", nil
	}
	return resolveImageURL(req.Image.Path)
}

func (g *Generator) record(ctx context.Context, req GenerateRequest, resp GenerateResponse) {
	if g.jobs == nil {
		return
	}
	providerName := req.Provider
	if strings.TrimSpace(providerName) == "" {
		providerName = g.registry.DefaultName()
	}

	rec := model.NewJobRecord(resp.ID, model.JobGenerate, providerName)
	rec.ModelUsed = resp.ModelUsed
	rec.Status = resp.Status
	rec.ErrorCode = resp.Error
	rec.Message = resp.Message
	if resp.SavedFile != nil {
		rec.SavedPaths = []string{*resp.SavedFile}
	}
	if err := g.jobs.CreateJob(ctx, rec); err != nil {
		slog.Warn("record generate job", "job_id", resp.ID, "error", err)
	}
}

// classify returns the error's category code, or fallback when the error
// carries none.
func classify(err error, fallback string) string {
	if code := model.ErrorCode(err); code != model.CodeInternalError {
		return code
	}
	return fallback
}

func failed(id, code, message string) GenerateResponse {
	return GenerateResponse{
		ID:      id,
		Status:  model.StatusFailed,
		Message: message,
		Error:   &code,
	}
}
