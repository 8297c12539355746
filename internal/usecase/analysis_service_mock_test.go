package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/draftedge/draftedge/internal/platform/cache"
)

type providerMock struct {
	mock.Mock
}

func (m *providerMock) Analyze(ctx context.Context, apiKey, prompt string) (string, error) {
	args := m.Called(ctx, apiKey, prompt)
	return args.String(0), args.Error(1)
}

func (m *providerMock) AnalyzeJSON(ctx context.Context, apiKey, prompt string) ([]byte, error) {
	args := m.Called(ctx, apiKey, prompt)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *providerMock) AnalyzeText(ctx context.Context, apiKey, prompt string) (string, error) {
	args := m.Called(ctx, apiKey, prompt)
	return args.String(0), args.Error(1)
}

func TestAnalysisService_PassesCallerAPIKeyToProviderUsingMock(t *testing.T) {
	provider := &providerMock{}
	svc := NewAnalysisService(publishedStore(t), provider, cache.NewStore(time.Hour), nil)
	ctx := context.Background()

	provider.
		On("Analyze", mock.Anything, "caller-key", mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "Justin Jefferson")
		})).
		Return("**Confidence: ✅ High**\n\n---\n\nSolid start.", nil).
		Once()

	out, err := svc.Dossier(ctx, "caller-key", DossierRequest{PlayerName: "Justin Jefferson"})
	if err != nil {
		t.Fatalf("dossier: %v", err)
	}
	if !strings.Contains(out, "Solid start.") {
		t.Fatalf("unexpected answer: %q", out)
	}
	provider.AssertExpectations(t)
}

func TestAnalysisService_CachedAnswerSkipsProviderUsingMock(t *testing.T) {
	provider := &providerMock{}
	svc := NewAnalysisService(publishedStore(t), provider, cache.NewStore(time.Hour), nil)
	ctx := context.Background()
	req := TradeRequest{MyAssets: []string{"Justin Jefferson"}, PartnerAssets: []string{"Bijan Robinson"}}

	provider.
		On("Analyze", mock.Anything, mock.Anything, mock.Anything).
		Return("fair deal", nil).
		Once()

	for range 2 {
		out, err := svc.TradeAnalysis(ctx, "caller-key", req)
		if err != nil {
			t.Fatalf("trade analysis: %v", err)
		}
		if out != "fair deal" {
			t.Fatalf("unexpected answer: %q", out)
		}
	}
	provider.AssertExpectations(t)
}
