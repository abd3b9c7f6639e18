package tags

import (
	"errors"
	"strings"
)

var (
	// ErrQueryEmpty is returned for an empty query. Callers treat it as a no-op.
	ErrQueryEmpty = errors.New("query is empty")
	// ErrSymbolNotFound is returned when a query matches no tag.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// pathPrefix switches a query from symbol mode to path mode.
const pathPrefix = "@"

// Mode selects which record field a query is matched against.
type Mode int

const (
	ModeSymbol Mode = iota
	ModePath
)

func (m Mode) String() string {
	switch m {
	case ModeSymbol:
		return "symbol"
	case ModePath:
		return "path"
	}
	return "mode(?)"
}

// Query is a parsed search request.
type Query struct {
	Mode Mode
	Text string // lower-cased, without the mode prefix
}

// ParseQuery splits the mode prefix off raw.
func ParseQuery(raw string) Query {
	q := Query{Mode: ModeSymbol, Text: raw}
	if strings.HasPrefix(raw, pathPrefix) {
		q.Mode = ModePath
		q.Text = strings.TrimPrefix(raw, pathPrefix)
	}
	q.Text = strings.ToLower(q.Text)
	return q
}

// Match reports whether rec satisfies q.
func (q Query) Match(rec Record) bool {
	switch q.Mode {
	case ModePath:
		return strings.Contains(strings.ToLower(rec.FilePath), q.Text)
	case ModeSymbol:
		return strings.Contains(strings.ToLower(rec.Symbol), q.Text)
	}
	return false
}

// Search returns the raw lines of store matching query, in store order.
//
// A query starting with '@' matches against file paths, anything else
// against symbol names; both are case-insensitive substring matches. Lines
// that do not parse are never returned.
func Search(query string, store *Store) ([]string, error) {
	if query == "" {
		return nil, ErrQueryEmpty
	}
	q := ParseQuery(query)

	var matches []string
	for _, line := range store.Lines() {
		rec, ok := Parse(line)
		if !ok {
			continue
		}
		if q.Match(rec) {
			matches = append(matches, line)
		}
	}
	if len(matches) == 0 {
		return nil, ErrSymbolNotFound
	}
	return matches, nil
}
