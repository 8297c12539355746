package rankings

import (
	"fmt"

	"github.com/draftedge/draftedge/internal/domain/metric"
)

// Category identifies which ranking board an entry belongs to. The expert
// consensus feed carries all three boards in one file and tags each row.
type Category string

const (
	CategoryOverall    Category = "overall"
	CategoryPositional Category = "positional"
	CategoryRookie     Category = "rookie"
)

// feed tag -> category. Rows with any other tag are dropped at ingest.
var categoryTags = map[string]Category{
	"bo":  CategoryOverall,
	"bp":  CategoryPositional,
	"drk": CategoryRookie,
}

// ParseCategory maps a raw feed tag onto a Category.
func ParseCategory(tag string) (Category, bool) {
	c, ok := categoryTags[tag]
	return c, ok
}

// ParseCategoryName accepts the public category names used in API requests.
func ParseCategoryName(name string) (Category, error) {
	switch Category(name) {
	case CategoryOverall, CategoryPositional, CategoryRookie:
		return Category(name), nil
	default:
		return "", fmt.Errorf("unknown ranking category %q", name)
	}
}

// Entry is one player's row on a single ranking board. Key is the normalized
// name used to join against other sources; DisplayName keeps the original
// feed spelling for presentation.
type Entry struct {
	Key         string
	DisplayName string
	Position    string
	Team        string
	Bye         metric.Int
	Rank        metric.Float
	StdDev      metric.Float
	Best        metric.Int
	Worst       metric.Int
	RankDelta   metric.Float
	Category    Category
}

// Board is a single category's entries keyed by normalized name.
type Board map[string]Entry

// Set groups the three boards produced by one ingest pass.
type Set struct {
	Overall    Board
	Positional Board
	Rookie     Board
}

// Empty reports whether every board in the set is empty, which signals a
// total ingest failure rather than a partial one.
func (s Set) Empty() bool {
	return len(s.Overall) == 0 && len(s.Positional) == 0 && len(s.Rookie) == 0
}
