package gemini

import (
	"fmt"
	"regexp"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// Models are instructed to answer with a JSON object, but routinely wrap it
// in markdown fences or prose. The widest-match brace regex recovers the
// object from whatever surrounds it.
var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONBlock pulls the outermost JSON object out of a model answer.
func ExtractJSONBlock(text string) (string, bool) {
	block := jsonBlockPattern.FindString(text)
	if block == "" {
		return "", false
	}
	return block, true
}

// Analysis is a model answer split into prose and the model's own confidence
// estimate.
type Analysis struct {
	Text       string  `json:"analysis"`
	Confidence float64 `json:"confidence"`
}

// ParseAnalysis decodes the structured answer. Returns false when the answer
// carries no parseable JSON object or an empty analysis field, in which case
// callers should fall back to the raw text.
func ParseAnalysis(text string) (Analysis, bool) {
	block, ok := ExtractJSONBlock(text)
	if !ok {
		return Analysis{}, false
	}

	var out Analysis
	if err := sonic.Unmarshal([]byte(block), &out); err != nil {
		return Analysis{}, false
	}
	if strings.TrimSpace(out.Text) == "" {
		return Analysis{}, false
	}
	return out, true
}

// ConfidenceLevel buckets the model's self-reported confidence.
func ConfidenceLevel(confidence float64) (level, badge string) {
	switch {
	case confidence >= 0.8:
		return "High", "✅"
	case confidence >= 0.5:
		return "Medium", "🤔"
	default:
		return "Low", "⚠️"
	}
}

// FormatAnalysis renders the final markdown answer with a confidence badge.
// Unstructured answers pass through untouched rather than being mislabeled
// with a made-up confidence.
func FormatAnalysis(raw string) string {
	parsed, ok := ParseAnalysis(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}

	level, badge := ConfidenceLevel(parsed.Confidence)
	return fmt.Sprintf("**Confidence: %s %s**\n\n---\n\n%s", badge, level, strings.TrimSpace(parsed.Text))
}
