package feed

import (
	"fmt"
	"strings"

	"github.com/draftedge/draftedge/internal/domain/values"
)

// Values tables key rows by the raw identity value, not a normalized name:
// pick tables carry labels like "2026 Pick 1.04" that normalization would
// destroy, and player value lookups happen against the verbatim feed
// spelling.
var valueIdentityColumns = []string{"player_name", "player", "full_name", "pick"}

// ParseValues reads a market values CSV into a table keyed by the row's raw
// identity value. Every column is preserved as published.
func ParseValues(data []byte) (values.Table, error) {
	header, rows, err := readCSV(data)
	if err != nil {
		return nil, fmt.Errorf("read values csv: %w", err)
	}

	idIdx, err := firstColumn(header, valueIdentityColumns)
	if err != nil {
		return nil, fmt.Errorf("values csv: %w", err)
	}

	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}

	table := make(values.Table, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(field(row, idIdx))
		if id == "" {
			continue
		}

		record := make(values.Row, len(names))
		for _, name := range names {
			record[name] = strings.TrimSpace(column(header, row, name))
		}
		table[id] = record
	}

	return table, nil
}
