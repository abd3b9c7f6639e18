// Package outline lists the symbols of a single file by asking ctags
// directly, without touching the workspace tag index.
package outline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mesdx/tagnav/internal/tags"
)

// ErrTransientFile is returned for files that do not exist on disk yet
// (unsaved or untitled buffers). Callers treat it as a no-op.
var ErrTransientFile = errors.New("file is not saved on disk")

// Source produces raw tag output for one file.
type Source interface {
	Outline(ctx context.Context, file string) ([]byte, error)
}

// Engine runs outlines. Each call is independent.
type Engine struct {
	Source Source
}

// Outline returns the tag lines ctags reports for file, in output order.
func (e *Engine) Outline(ctx context.Context, file string) ([]string, error) {
	if file == "" {
		return nil, ErrTransientFile
	}
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrTransientFile, file)
	}

	out, err := e.Source.Outline(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("outline %s: %w", file, err)
	}
	return SplitOutput(string(out)), nil
}

// SplitOutput splits ctags stdout into tag lines. Both "\n" and "\r\n"
// terminators are accepted; the empty string after the final terminator and
// pseudo-tag lines are dropped.
func SplitOutput(out string) []string {
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		if tags.IsMeta(l) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
