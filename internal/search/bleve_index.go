package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// BleveIndex is a thin wrapper over an in-memory Bleve index.
type BleveIndex struct {
	Index bleve.Index
}

// NewMemOnly creates an empty in-memory index with the given mapping.
func NewMemOnly(m mapping.IndexMapping) (*BleveIndex, error) {
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("bleve new: %w", err)
	}
	return &BleveIndex{Index: idx}, nil
}

func (b *BleveIndex) Close() error {
	if b == nil || b.Index == nil {
		return nil
	}
	return b.Index.Close()
}
