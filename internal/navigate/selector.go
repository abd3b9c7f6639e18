package navigate

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// FormSelector asks with an interactive huh select list.
type FormSelector struct {
	Title string
}

// Select implements Selector. Aborting the form (esc, ctrl+c) is no choice.
func (s FormSelector) Select(ctx context.Context, labels []string) (string, bool, error) {
	opts := make([]huh.Option[string], len(labels))
	for i, l := range labels {
		opts[i] = huh.NewOption(displayLabel(l), l)
	}

	title := s.Title
	if title == "" {
		title = "Select a symbol"
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Filtering(true).
				Height(15).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	return choice, choice != "", nil
}

// displayLabel makes tab-separated labels readable in a terminal list.
func displayLabel(label string) string {
	return strings.ReplaceAll(label, "\t", "   ")
}

// FirstSelector always picks the first label. It is used when no terminal
// is attached.
type FirstSelector struct{}

// Select implements Selector.
func (FirstSelector) Select(ctx context.Context, labels []string) (string, bool, error) {
	if len(labels) == 0 {
		return "", false, nil
	}
	return labels[0], true, nil
}
