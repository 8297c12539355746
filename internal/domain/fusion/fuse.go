package fusion

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/draftedge/draftedge/internal/domain/directory"
	"github.com/draftedge/draftedge/internal/domain/metric"
	"github.com/draftedge/draftedge/internal/domain/rankings"
)

const unknownField = "N/A"

// CategoryStats carries one ranking board's numbers for a single player.
type CategoryStats struct {
	Rank      metric.Float `json:"rank"`
	StdDev    metric.Float `json:"stdDev"`
	Best      metric.Int   `json:"best"`
	Worst     metric.Int   `json:"worst"`
	RankDelta metric.Float `json:"rankDelta"`
}

// Record is the fused view of a player across every source. Team and
// Position resolve by source precedence (overall, positional, rookie board,
// then directory) and fall back to "N/A". RookieListed reflects rookie board
// membership only; YearsExp comes from the directory and the two can
// disagree.
type Record struct {
	Key          string        `json:"key"`
	DisplayName  string        `json:"displayName"`
	Position     string        `json:"position"`
	Team         string        `json:"team"`
	Status       string        `json:"status,omitempty"`
	Bye          metric.Int    `json:"byeWeek"`
	YearsExp     metric.Int    `json:"yearsExp"`
	Age          metric.Int    `json:"age"`
	Overall      CategoryStats `json:"overall"`
	Positional   CategoryStats `json:"positional"`
	Rookie       CategoryStats `json:"rookie"`
	RookieListed bool          `json:"rookieListed"`
}

// Stats returns the block for one board.
func (r Record) Stats(c rankings.Category) CategoryStats {
	switch c {
	case rankings.CategoryPositional:
		return r.Positional
	case rankings.CategoryRookie:
		return r.Rookie
	default:
		return r.Overall
	}
}

var titleCaser = cases.Title(language.Und)

// Fuse joins the three ranking boards with the player directory into one
// record per normalized name. The key universe is the union of the boards;
// directory-only players do not produce records, the directory only enriches.
func Fuse(set rankings.Set, dir directory.Index) map[string]Record {
	keys := make(map[string]struct{}, len(set.Overall)+len(set.Positional)+len(set.Rookie))
	for k := range set.Overall {
		keys[k] = struct{}{}
	}
	for k := range set.Positional {
		keys[k] = struct{}{}
	}
	for k := range set.Rookie {
		keys[k] = struct{}{}
	}

	out := make(map[string]Record, len(keys))
	for key := range keys {
		out[key] = fuseOne(key, set, dir)
	}
	return out
}

func fuseOne(key string, set rankings.Set, dir directory.Index) Record {
	// Boards in precedence order. The overall board is the primary source
	// for presentation fields, later boards only fill gaps.
	boards := []rankings.Board{set.Overall, set.Positional, set.Rookie}

	rec := Record{
		Key:      key,
		Position: unknownField,
		Team:     unknownField,
	}

	for _, b := range boards {
		e, ok := b[key]
		if !ok {
			continue
		}
		if rec.DisplayName == "" && e.DisplayName != "" {
			rec.DisplayName = e.DisplayName
		}
		if rec.Position == unknownField && e.Position != "" {
			rec.Position = e.Position
		}
		if rec.Team == unknownField && e.Team != "" {
			rec.Team = e.Team
		}
		if !rec.Bye.Known && e.Bye.Known {
			rec.Bye = e.Bye
		}
	}

	if e, ok := set.Overall[key]; ok {
		rec.Overall = statsOf(e)
	}
	if e, ok := set.Positional[key]; ok {
		rec.Positional = statsOf(e)
	}
	if e, ok := set.Rookie[key]; ok {
		rec.Rookie = statsOf(e)
		rec.RookieListed = true
	}

	if d, ok := dir.Lookup(key); ok {
		if rec.DisplayName == "" && d.FullName != "" {
			rec.DisplayName = d.FullName
		}
		if rec.Position == unknownField && d.Position != "" {
			rec.Position = d.Position
		}
		if rec.Team == unknownField && d.Team != "" {
			rec.Team = d.Team
		}
		rec.Status = d.Status
		// Unknown upstream experience stays unknown; a known 0 marks a true
		// rookie and the two must not collapse into each other.
		rec.YearsExp = d.YearsExp
		if d.Age.Known && d.Age.Value > 0 {
			rec.Age = d.Age
		}
	}

	if rec.DisplayName == "" {
		rec.DisplayName = titleCaser.String(key)
	}

	return rec
}

func statsOf(e rankings.Entry) CategoryStats {
	return CategoryStats{
		Rank:      e.Rank,
		StdDev:    e.StdDev,
		Best:      e.Best,
		Worst:     e.Worst,
		RankDelta: e.RankDelta,
	}
}
