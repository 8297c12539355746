package usecase

import (
	"context"

	"github.com/draftedge/draftedge/internal/domain/directory"
)

// TrendingPlayer is one row of the league-wide most-added report, as
// delivered by the directory provider.
type TrendingPlayer struct {
	PlayerID string
	Count    int
}

// FeedSource downloads one feed file by name. The bool reports whether the
// bytes were served from a conditional-request cache.
type FeedSource interface {
	Fetch(ctx context.Context, filename string) ([]byte, bool, error)
}

// DirectoryProvider supplies the player directory and trending adds.
type DirectoryProvider interface {
	FetchDirectory(ctx context.Context) (directory.Index, error)
	FetchTrending(ctx context.Context, lookbackHours, limit int) ([]TrendingPlayer, error)
}

// AnalysisProvider runs prompts against the language model using the
// caller's own API key. Analyze returns badge-formatted markdown; AnalyzeJSON
// returns the raw JSON object extracted from the model answer; AnalyzeText
// returns the untouched answer.
type AnalysisProvider interface {
	Analyze(ctx context.Context, apiKey, prompt string) (string, error)
	AnalyzeJSON(ctx context.Context, apiKey, prompt string) ([]byte, error)
	AnalyzeText(ctx context.Context, apiKey, prompt string) (string, error)
}
