package values

// Row is one record from a market values feed, kept as the raw column map so
// downstream consumers see exactly what the feed published. Unlike the
// rankings join key, the identity column here is used verbatim: values tables
// include draft picks ("2026 Pick 1.04") that name normalization would
// mangle.
type Row map[string]string

// Table maps the raw identity value of each row to the full row. Player
// tables key on player name, pick tables on pick label.
type Table map[string]Row
