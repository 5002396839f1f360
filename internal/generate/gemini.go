package generate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/errors"
	"git.home.luguber.info/inful/reportbot/internal/report"
	"git.home.luguber.info/inful/reportbot/internal/source"
)

const systemPrompt = `You are an assistant that writes concise daily status reports in English.
Given tabular status data, produce a short markdown report with three sections:
Completed, In Progress, and Blockers. Omit empty sections. Do not invent items.`

// GeminiGenerator drafts reports with Google's Gemini API.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

// NewGeminiGenerator creates the generator from config.
func NewGeminiGenerator(ctx context.Context, cfg config.GeneratorConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigRequired("generator.api_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.GenerationFailed(fmt.Errorf("create genai client: %w", err))
	}

	return &GeminiGenerator{
		client:          client,
		model:           cfg.Model,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// Name identifies the generator in logs and the archive.
func (g *GeminiGenerator) Name() string { return "gemini:" + g.model }

// Generate sends the prompt and returns the drafted report text.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := BuildPrompt(req)

	temperature := float32(0)
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       &temperature,
			MaxOutputTokens:   g.maxOutputTokens,
		},
	)
	if err != nil {
		return Result{}, errors.GenerationFailed(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.GenerationFailed(fmt.Errorf("model returned empty report"))
	}

	return Result{Report: text, Model: g.model, Prompt: prompt}, nil
}

// BuildPrompt renders the request into the user prompt. Exported so the
// archive and tests can reason about it without a live client.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the daily status report for %s.\n\n", req.Date)
	fmt.Fprintf(&b, "Today's entry:\n%s\n", report.Summary(req.Record))

	if len(req.Records) > 0 {
		b.WriteString("\nRecent sheet rows (most recent first):\n")
		records := make([]source.Record, len(req.Records))
		copy(records, req.Records)
		source.SortByDateDesc(records)
		limit := len(records)
		if limit > 5 {
			limit = 5
		}
		for _, rec := range records[:limit] {
			fmt.Fprintf(&b, "- %s\n", report.Summary(rec))
		}
	}

	if req.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", req.Context)
	}
	return b.String()
}
