package directory

import "github.com/draftedge/draftedge/internal/domain/metric"

// Entry is one player record from the league player directory. The upstream
// API reports years_exp and age as JSON null for many players; a true rookie
// is a known 0, which must stay distinct from unknown.
type Entry struct {
	ID       string
	FullName string
	Position string
	Team     string
	Status   string
	YearsExp metric.Int
	Age      metric.Int
}

// Index holds the directory in the two shapes lookups need: the raw records
// keyed by upstream ID and a normalized-name index pointing back at them.
// Name collisions resolve last-write-wins in upstream iteration order.
type Index struct {
	ByID     map[string]Entry
	NameToID map[string]string
}

// Empty reports whether the directory fetch produced no usable records.
func (ix Index) Empty() bool {
	return len(ix.ByID) == 0
}

// Lookup returns the entry behind a normalized name, if any.
func (ix Index) Lookup(key string) (Entry, bool) {
	id, ok := ix.NameToID[key]
	if !ok {
		return Entry{}, false
	}
	e, ok := ix.ByID[id]
	return e, ok
}
