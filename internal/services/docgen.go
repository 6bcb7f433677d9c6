package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

const simplifySystemMessage = `You are an AI that simplifies complex documents into easy-to-understand, no-brainer guides. Your goal is to extract only the most essential information and present it in a clear, structured format using Markdown.

Each section should:

Have a clear and concise title (#, ##, ###).
Use short, simple sentences that are easy to grasp.
Avoid unnecessary details—only include what truly matters.
Follow a logical order for natural flow.
Be engaging and effortless to read.`

const simplifyUserTemplate = `Here's a document that needs to be turned into a simple, no-brainer guide.

Instructions:
Extract only key points—make it as clear and effortless as possible.
Use Markdown for structure (#, ##, ###).
Avoid technical jargon—write as if explaining to a 10-year-old.
Keep each section short, punchy, and straight to the point.
Document Content:
%s`

// textBlocksSchema constrains the model output to titled Markdown blocks.
var textBlocksSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"blocks": map[string]any{
			"description": "A list of structured text blocks with titles and content in Markdown format.",
			"type":        "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"description": "The title in Markdown format (#, ##, ###)",
						"type":        "string",
					},
					"content": map[string]any{
						"description": "The corresponding content in Markdown format",
						"type":        "string",
					},
				},
				"required":             []string{"title", "content"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"blocks"},
	"additionalProperties": false,
}

type GeneratedBlock struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocGenService turns an uploaded PDF into simplified Markdown blocks.
type DocGenService interface {
	GenerateTextBlocks(ctx context.Context, filePath string) ([]GeneratedBlock, error)
}

type docGenService struct {
	log    *logger.Logger
	openai openai.Client
}

func NewDocGenService(log *logger.Logger, openaiClient openai.Client) (DocGenService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &docGenService{
		log:    log.With("service", "DocGenService"),
		openai: openaiClient,
	}, nil
}

func (s *docGenService) GenerateTextBlocks(ctx context.Context, filePath string) ([]GeneratedBlock, error) {
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return nil, apierr.Validation("only PDF files are supported")
	}
	if s.openai == nil {
		return nil, apierr.Upstream(errors.New("OpenAI is not configured"))
	}

	text, err := ExtractPDFText(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierr.NotFound("file %s not found", filePath)
		}
		return nil, apierr.Validation("failed to extract text: %v", err)
	}

	obj, err := s.openai.GenerateJSON(ctx,
		simplifySystemMessage,
		fmt.Sprintf(simplifyUserTemplate, text),
		"text_blocks",
		textBlocksSchema,
	)
	if err != nil {
		if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apierr.UpstreamTimeout(err)
		}
		s.log.Error("Text block generation failed", "file", filePath, "error", err)
		return nil, apierr.Upstream(fmt.Errorf("error generating text blocks: %w", err))
	}

	raw, err := json.Marshal(obj["blocks"])
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("malformed structured output"))
	}
	var blocks []GeneratedBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, apierr.Upstream(fmt.Errorf("malformed structured output: %w", err))
	}
	return blocks, nil
}
