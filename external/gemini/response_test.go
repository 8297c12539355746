package gemini

import (
	"strings"
	"testing"
)

func TestExtractJSONBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"analysis\": \"Buy low.\", \"confidence\": 0.9}\n```\nHope that helps!"
	block, ok := ExtractJSONBlock(text)
	if !ok {
		t.Fatal("block not found")
	}
	if !strings.HasPrefix(block, "{") || !strings.HasSuffix(block, "}") {
		t.Fatalf("block = %q", block)
	}

	if _, ok := ExtractJSONBlock("no json here"); ok {
		t.Fatal("found a block in plain prose")
	}
}

func TestParseAnalysis(t *testing.T) {
	parsed, ok := ParseAnalysis(`{"analysis": "Trade him now.", "confidence": 0.65}`)
	if !ok {
		t.Fatal("parse failed")
	}
	if parsed.Text != "Trade him now." || parsed.Confidence != 0.65 {
		t.Fatalf("parsed = %+v", parsed)
	}

	if _, ok := ParseAnalysis(`{"confidence": 0.9}`); ok {
		t.Fatal("empty analysis field must not parse")
	}
	if _, ok := ParseAnalysis("not json at all"); ok {
		t.Fatal("prose must not parse")
	}
}

func TestConfidenceLevel(t *testing.T) {
	cases := []struct {
		confidence float64
		level      string
		badge      string
	}{
		{0.95, "High", "✅"},
		{0.8, "High", "✅"},
		{0.79, "Medium", "🤔"},
		{0.5, "Medium", "🤔"},
		{0.49, "Low", "⚠️"},
		{0, "Low", "⚠️"},
	}
	for _, tc := range cases {
		level, badge := ConfidenceLevel(tc.confidence)
		if level != tc.level || badge != tc.badge {
			t.Fatalf("ConfidenceLevel(%v) = %s %s, want %s %s", tc.confidence, level, badge, tc.level, tc.badge)
		}
	}
}

func TestFormatAnalysis_Structured(t *testing.T) {
	got := FormatAnalysis("```json\n{\"analysis\": \"Hold him.\", \"confidence\": 0.85}\n```")
	want := "**Confidence: ✅ High**\n\n---\n\nHold him."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatAnalysis_UnstructuredPassthrough(t *testing.T) {
	raw := "  The model just rambled here.  "
	if got := FormatAnalysis(raw); got != "The model just rambled here." {
		t.Fatalf("got %q", got)
	}
}
