package gemini

import (
	"context"
	"fmt"

	"github.com/draftedge/draftedge/internal/apperr"
)

// Analyze runs a prompt and returns the answer as markdown with a
// confidence badge when the model produced the structured form.
func (c *Client) Analyze(ctx context.Context, apiKey, prompt string) (string, error) {
	text, err := c.GenerateContent(ctx, apiKey, prompt)
	if err != nil {
		return "", err
	}
	return FormatAnalysis(text), nil
}

// AnalyzeJSON runs a prompt whose contract is a bare JSON object and returns
// that object's bytes.
func (c *Client) AnalyzeJSON(ctx context.Context, apiKey, prompt string) ([]byte, error) {
	text, err := c.GenerateContent(ctx, apiKey, prompt)
	if err != nil {
		return nil, err
	}

	block, ok := ExtractJSONBlock(text)
	if !ok {
		return nil, fmt.Errorf("%w: model answer contained no JSON object", apperr.ErrDependencyUnavailable)
	}
	return []byte(block), nil
}

// AnalyzeText runs a prompt and returns the raw answer.
func (c *Client) AnalyzeText(ctx context.Context, apiKey, prompt string) (string, error) {
	return c.GenerateContent(ctx, apiKey, prompt)
}
