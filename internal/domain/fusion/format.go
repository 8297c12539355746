package fusion

import (
	"fmt"
	"strings"

	"github.com/draftedge/draftedge/internal/domain/rankings"
)

// FormatContext renders one player as the plain-text block fed into analysis
// prompts. The category selects which board's numbers are shown. Optional
// lines appear only when their value is known and nonzero; a known zero is
// indistinguishable from absent data in the upstream feed, so both are
// suppressed rather than printed as a misleading 0.
func FormatContext(rec Record, cat rankings.Category) string {
	lines := make([]string, 0, 9)

	lines = append(lines, fmt.Sprintf("- Player: %s (%s, %s)", rec.DisplayName, rec.Position, rec.Team))

	if rec.YearsExp.Known {
		lines = append(lines, fmt.Sprintf("  - Experience: %d years", rec.YearsExp.Value))
	} else {
		lines = append(lines, "  - Experience: N/A years")
	}

	if rec.RookieListed {
		lines = append(lines, "  - Is Rookie: Yes")
	} else {
		lines = append(lines, "  - Is Rookie: No")
	}

	stats := rec.Stats(cat)
	label := titleCaser.String(string(cat))
	if stats.Rank.Known {
		lines = append(lines, fmt.Sprintf("  - %s ECR: %.1f", label, stats.Rank.Value))
	} else {
		lines = append(lines, fmt.Sprintf("  - %s ECR: N/A", label))
	}

	if stats.StdDev.Known && stats.StdDev.Value != 0 {
		lines = append(lines, fmt.Sprintf("  - Std Dev: %.2f", stats.StdDev.Value))
	}
	if stats.Best.Known && stats.Best.Value != 0 {
		lines = append(lines, fmt.Sprintf("  - Best Rank: %d", stats.Best.Value))
	}
	if stats.Worst.Known && stats.Worst.Value != 0 {
		lines = append(lines, fmt.Sprintf("  - Worst Rank: %d", stats.Worst.Value))
	}
	if stats.RankDelta.Known && stats.RankDelta.Value != 0 {
		lines = append(lines, fmt.Sprintf("  - Rank Delta (1W): %.1f", stats.RankDelta.Value))
	}
	if rec.Bye.Known && rec.Bye.Value != 0 {
		lines = append(lines, fmt.Sprintf("  - Bye Week: %d", rec.Bye.Value))
	}

	return strings.Join(lines, "\n")
}

// FormatContextList renders several players back to back, the shape most
// multi-player prompts expect.
func FormatContextList(recs []Record, cat rankings.Category) string {
	blocks := make([]string, 0, len(recs))
	for _, rec := range recs {
		blocks = append(blocks, FormatContext(rec, cat))
	}
	return strings.Join(blocks, "\n")
}
