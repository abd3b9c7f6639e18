// Package navigate turns a list of matching tag lines into a single
// navigation target: it asks a Selector which label the user wants, maps the
// label back to its tag record and hands the location to a Navigator.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mesdx/tagnav/internal/tags"
)

// ErrTargetMissing is returned when the resolved file cannot be opened.
var ErrTargetMissing = errors.New("navigation target not found")

// Selector asks the user to pick one of labels. ok is false when nothing was
// chosen.
type Selector interface {
	Select(ctx context.Context, labels []string) (choice string, ok bool, err error)
}

// Navigator opens path and moves to the 0-based line.
type Navigator interface {
	Navigate(ctx context.Context, path string, line int) error
}

// Notifier receives user-facing messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Target is a resolved navigation location.
type Target struct {
	Symbol   string `json:"symbol"`
	Kind     string `json:"kind"`
	FilePath string `json:"filePath"` // as written in the tag file
	AbsPath  string `json:"absPath"`
	Line     int    `json:"line"` // 0-based
}

// TargetOf builds the Target for rec, resolving relative paths against root.
func TargetOf(root string, rec tags.Record) Target {
	abs := rec.FilePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	return Target{
		Symbol:   rec.Symbol,
		Kind:     rec.Kind,
		FilePath: rec.FilePath,
		AbsPath:  abs,
		Line:     rec.Line,
	}
}

// Jumper wires the selection and navigation collaborators together.
type Jumper struct {
	Root      string
	Selector  Selector
	Navigator Navigator
	Notifier  Notifier

	// OnJump, when set, is called after a successful navigation.
	OnJump func(Target)
}

// Pick shows the candidates of lines and navigates to the chosen one.
// withPath selects "symbol<TAB>path" labels instead of bare symbols. ok is
// false when the user made no choice.
func (j *Jumper) Pick(ctx context.Context, lines []string, withPath bool) (Target, bool, error) {
	labels := tags.Labels(lines, withPath)
	if len(labels) == 0 {
		return Target{}, false, nil
	}

	choice, ok, err := j.Selector.Select(ctx, labels)
	if err != nil {
		return Target{}, false, fmt.Errorf("select: %w", err)
	}
	if !ok {
		return Target{}, false, nil
	}

	rec, _, found := tags.Resolve(lines, choice, withPath)
	if !found {
		return Target{}, false, nil
	}

	target := TargetOf(j.Root, rec)
	if err := j.Navigator.Navigate(ctx, target.AbsPath, target.Line); err != nil {
		if j.Notifier != nil {
			j.Notifier.Error("Cannot find the symbol: " + rec.Symbol)
		}
		return target, false, err
	}
	if j.OnJump != nil {
		j.OnJump(target)
	}
	return target, true, nil
}
