package tags

import "strings"

// Candidate pairs a display label with the raw line it was rendered from.
type Candidate struct {
	Label  string
	Line   string
	Record Record
}

// Label renders the display label for rec. With withPath the file path is
// appended after a tab so same-named symbols in different files differ.
func Label(rec Record, withPath bool) string {
	if withPath {
		return rec.Symbol + fieldSep + rec.FilePath
	}
	return rec.Symbol
}

// Candidates renders a label for every parsable line, keeping line order.
func Candidates(lines []string, withPath bool) []Candidate {
	out := make([]Candidate, 0, len(lines))
	for _, line := range lines {
		rec, ok := Parse(line)
		if !ok {
			continue
		}
		out = append(out, Candidate{Label: Label(rec, withPath), Line: line, Record: rec})
	}
	return out
}

// Labels returns just the labels of Candidates(lines, withPath).
func Labels(lines []string, withPath bool) []string {
	cands := Candidates(lines, withPath)
	labels := make([]string, len(cands))
	for i, c := range cands {
		labels[i] = c.Label
	}
	return labels
}

// Resolve maps a label chosen from Labels back to its record.
//
// The first candidate whose label equals chosen wins. When the display layer
// handed back something else (trimmed or otherwise altered), the first line
// that starts with chosen is used instead. Exact labels are tried before any
// prefix match, so a listed "sum" is not shadowed by an earlier "summary".
func Resolve(lines []string, chosen string, withPath bool) (Record, string, bool) {
	if chosen == "" {
		return Record{}, "", false
	}
	cands := Candidates(lines, withPath)
	for _, c := range cands {
		if c.Label == chosen {
			return c.Record, c.Line, true
		}
	}
	for _, c := range cands {
		if strings.HasPrefix(c.Line, chosen) {
			return c.Record, c.Line, true
		}
	}
	return Record{}, "", false
}
