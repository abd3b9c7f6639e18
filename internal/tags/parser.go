// Package tags parses, stores and searches ctags tag-file lines.
//
// A tag line has the shape
//
//	symbol<TAB>filePath<TAB>N;"<TAB>kind[<TAB>extra...]
//
// where N is the 1-based line of the definition. Lines beginning with '!' are
// tag-file metadata and never reach a Store.
package tags

import (
	"strconv"
	"strings"
)

const (
	fieldSep      = "\t"
	lineDirective = `;"`
	minFields     = 4
)

// Record is one parsed tag line.
type Record struct {
	Symbol   string   `json:"symbol"`
	FilePath string   `json:"filePath"` // relative to the workspace root
	Line     int      `json:"line"`     // 0-based
	Kind     string   `json:"kind"`
	Extra    []string `json:"extra,omitempty"`
}

// Parse splits a raw tag line into a Record. It reports false for any line
// that is not a complete record: fewer than four tab-separated fields, or a
// line directive that does not start with an integer.
func Parse(line string) (Record, bool) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < minFields {
		return Record{}, false
	}

	n, ok := leadingInt(strings.ReplaceAll(fields[2], lineDirective, ""))
	if !ok {
		return Record{}, false
	}

	rec := Record{
		Symbol:   fields[0],
		FilePath: fields[1],
		Line:     n - 1,
		Kind:     fields[3],
	}
	if len(fields) > minFields {
		rec.Extra = fields[minFields:]
	}
	return rec, true
}

// leadingInt parses the decimal integer at the start of s, ignoring leading
// blanks and anything after the digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " ")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsMeta reports whether a raw line is tag-file metadata.
func IsMeta(line string) bool {
	return strings.HasPrefix(line, "!")
}
