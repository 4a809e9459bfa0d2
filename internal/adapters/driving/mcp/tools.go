package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the building-code regulations, in Chinese"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string            `json:"answer"`
	References []ReferenceOutput `json:"references"`
	NotFound   bool              `json:"not_found"`
}

// ReferenceOutput is one regulation article the answer cites.
type ReferenceOutput struct {
	SpecName   string  `json:"spec_name"`
	SpecAbbr   string  `json:"spec_abbr"`
	ArticleID  string  `json:"article_id"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about the indexed building-code regulations, citing the articles used",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:     answer.Text,
		References: make([]ReferenceOutput, len(answer.References)),
		NotFound:   answer.NotFound,
	}
	for i, ref := range answer.References {
		output.References[i] = ReferenceOutput{
			SpecName:   ref.SpecName,
			SpecAbbr:   ref.SpecAbbr,
			ArticleID:  ref.ArticleID,
			Similarity: ref.Similarity,
			Content:    ref.Content,
		}
	}

	return nil, output, nil
}
