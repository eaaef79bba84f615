package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
)

// DocumentConfirmation is shown after a knowledge-base document is stored.
const DocumentConfirmation = "✅ Information saved to the knowledge base."

// AddRagDocumentTool stores a piece of durable information in the knowledge base
type AddRagDocumentTool struct {
	DefaultTitle string
	Source       string
}

func (t *AddRagDocumentTool) Name() string {
	return "addRagDocument"
}

func (t *AddRagDocumentTool) Description() string {
	return "Save durable information (facts, preferences, decisions, contacts) to the knowledge base."
}

func (t *AddRagDocumentTool) Arguments() []Argument {
	return []Argument{
		{Name: "content", Type: "string", Description: "the information to remember, written as a standalone statement"},
		{Name: "title", Type: "string", Description: "short title", Optional: true, Default: t.DefaultTitle},
	}
}

func (t *AddRagDocumentTool) Decode(raw json.RawMessage) (Call, error) {
	var args struct {
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(args.Content)
	if content == "" {
		return nil, errors.New("content must not be empty")
	}
	return &AddRagDocumentCall{Input: backend.DocumentInput{
		Content: content,
		Metadata: backend.DocumentMetadata{
			Title:  orDefault(strings.TrimSpace(args.Title), t.DefaultTitle),
			Source: t.Source,
		},
	}}, nil
}

// AddRagDocumentCall is a decoded addRagDocument request
type AddRagDocumentCall struct {
	Input backend.DocumentInput
}

func (c *AddRagDocumentCall) ToolName() string { return "addRagDocument" }

func (c *AddRagDocumentCall) Execute(ctx context.Context, actions Actions) (Outcome, error) {
	if _, err := actions.AddRagDocument(ctx, c.Input); err != nil {
		return Outcome{}, err
	}
	return Outcome{Confirmation: DocumentConfirmation, Effects: EffectDocumentAdded}, nil
}
