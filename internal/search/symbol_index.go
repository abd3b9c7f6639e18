// Package search ranks tag lines by approximate symbol name, complementing
// the exact containment search of the tags package.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mesdx/tagnav/internal/tags"
)

const defaultLimit = 20

// SymbolDoc is the indexed document shape for one tag line.
type SymbolDoc struct {
	Kind      string `json:"kind"`
	SymbolKey string `json:"symbolKey"`
	PathKey   string `json:"pathKey"`
	TagKind   string `json:"tagKind"`
}

// Hit is one ranked match.
type Hit struct {
	Line   string      `json:"line"`
	Record tags.Record `json:"record"`
	Score  float64     `json:"score"`
}

// SymbolIndex is a fuzzy index over the lines of one tag store. It is built
// once per loaded store and never updated.
type SymbolIndex struct {
	idx   *BleveIndex
	lines []string
}

// Build indexes every parsable line of store.
func Build(store *tags.Store) (*SymbolIndex, error) {
	b, err := NewMemOnly(symbolIndexMapping())
	if err != nil {
		return nil, err
	}
	s := &SymbolIndex{idx: b}

	batch := b.Index.NewBatch()
	for _, line := range store.Lines() {
		rec, ok := tags.Parse(line)
		if !ok {
			continue
		}
		doc := SymbolDoc{
			Kind:      "tag",
			SymbolKey: strings.ToLower(rec.Symbol),
			PathKey:   strings.ToLower(rec.FilePath),
			TagKind:   rec.Kind,
		}
		if err := batch.Index(docID(len(s.lines)), doc); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("index %q: %w", rec.Symbol, err)
		}
		s.lines = append(s.lines, line)
	}
	if err := b.Index.Batch(batch); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("bleve batch: %w", err)
	}
	return s, nil
}

// Len reports the number of indexed lines.
func (s *SymbolIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

func (s *SymbolIndex) Close() error {
	if s == nil {
		return nil
	}
	return s.idx.Close()
}

// Fuzzy returns up to limit lines whose symbol approximately matches text,
// best first. Exact names outrank prefixes, prefixes outrank substrings and
// substrings outrank edit-distance matches. Equal scores keep store order.
func (s *SymbolIndex) Fuzzy(text string, limit int) ([]Hit, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil, tags.ErrQueryEmpty
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	exact := bleve.NewTermQuery(text)
	exact.SetField("symbolKey")
	exact.SetBoost(8)

	prefix := bleve.NewPrefixQuery(text)
	prefix.SetField("symbolKey")
	prefix.SetBoost(4)

	contains := bleve.NewWildcardQuery("*" + escapeWildcard(text) + "*")
	contains.SetField("symbolKey")
	contains.SetBoost(2)

	fuzzy := bleve.NewFuzzyQuery(text)
	fuzzy.SetField("symbolKey")
	fuzzy.SetFuzziness(fuzziness(text))

	q := bleve.NewDisjunctionQuery([]query.Query{exact, prefix, contains, fuzzy}...)

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := s.idx.Index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		n, err := strconv.Atoi(h.ID)
		if err != nil || n < 0 || n >= len(s.lines) {
			continue
		}
		rec, _ := tags.Parse(s.lines[n])
		hits = append(hits, Hit{Line: s.lines[n], Record: rec, Score: h.Score})
	}
	if len(hits) == 0 {
		return nil, tags.ErrSymbolNotFound
	}
	return hits, nil
}

// Lines returns the raw lines of hits, in order.
func Lines(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Line
	}
	return out
}

// docID zero-pads the line ordinal so sorting by id keeps store order.
func docID(n int) string {
	return fmt.Sprintf("%09d", n)
}

func fuzziness(text string) int {
	if len(text) <= 4 {
		return 1
	}
	return 2
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

func symbolIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	m.TypeField = "kind"
	m.DefaultType = "tag"

	docMapping := mapping.NewDocumentMapping()

	kw := mapping.NewKeywordFieldMapping()
	kw.Store = false

	docMapping.AddFieldMappingsAt("symbolKey", kw)
	docMapping.AddFieldMappingsAt("pathKey", kw)
	docMapping.AddFieldMappingsAt("tagKind", kw)

	m.AddDocumentMapping("tag", docMapping)
	return m
}
