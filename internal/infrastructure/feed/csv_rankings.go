package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/draftedge/draftedge/internal/domain/identity"
	"github.com/draftedge/draftedge/internal/domain/metric"
	"github.com/draftedge/draftedge/internal/domain/rankings"
)

// Column aliases tried in order. The consensus feed has renamed its name
// column more than once, so ingestion accepts any of the historical spellings.
var rankingNameColumns = []string{"player", "player_name", "full_name"}

const rankingTypeColumn = "ecr_type"

// ParseRankings splits the consensus rankings CSV into the three boards by
// row tag. Rows with an unknown tag or an unusable name are dropped
// individually; rows whose rank does not parse are kept with unknown metrics.
// A missing tag or name column fails the whole file because nothing in it can
// be trusted.
func ParseRankings(data []byte) (rankings.Set, error) {
	header, rows, err := readCSV(data)
	if err != nil {
		return rankings.Set{}, fmt.Errorf("read rankings csv: %w", err)
	}

	typeIdx, ok := header[rankingTypeColumn]
	if !ok {
		return rankings.Set{}, fmt.Errorf("rankings csv is missing the %q column", rankingTypeColumn)
	}
	nameIdx, err := firstColumn(header, rankingNameColumns)
	if err != nil {
		return rankings.Set{}, fmt.Errorf("rankings csv: %w", err)
	}

	set := rankings.Set{
		Overall:    make(rankings.Board),
		Positional: make(rankings.Board),
		Rookie:     make(rankings.Board),
	}

	for _, row := range rows {
		category, ok := rankings.ParseCategory(strings.TrimSpace(field(row, typeIdx)))
		if !ok {
			continue
		}

		rawName := strings.TrimSpace(field(row, nameIdx))
		key, ok := identity.Normalize(rawName)
		if !ok {
			continue
		}

		entry := rankings.Entry{
			Key:         key,
			DisplayName: rawName,
			Position:    strings.TrimSpace(column(header, row, "pos")),
			Team:        strings.TrimSpace(column(header, row, "team")),
			Bye:         metric.ParseInt(column(header, row, "bye")),
			Rank:        metric.ParseFloat(column(header, row, "ecr")),
			StdDev:      metric.ParseFloat(column(header, row, "sd")),
			Best:        metric.ParseInt(column(header, row, "best")),
			Worst:       metric.ParseInt(column(header, row, "worst")),
			RankDelta:   metric.ParseFloat(column(header, row, "rank_delta")),
			Category:    category,
		}

		switch category {
		case rankings.CategoryOverall:
			set.Overall[key] = entry
		case rankings.CategoryPositional:
			set.Positional[key] = entry
		case rankings.CategoryRookie:
			set.Rookie[key] = entry
		}
	}

	return set, nil
}

func readCSV(data []byte) (map[string]int, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	headerRow, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are skipped, not fatal; feeds occasionally
			// ship a truncated trailing line.
			continue
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func firstColumn(header map[string]int, names []string) (int, error) {
	for _, name := range names {
		if idx, ok := header[name]; ok {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("none of the identity columns %v are present", names)
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func column(header map[string]int, row []string, name string) string {
	idx, ok := header[name]
	if !ok {
		return ""
	}
	return field(row, idx)
}
