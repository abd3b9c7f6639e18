package cli

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/history"
	"github.com/mesdx/tagnav/internal/navigate"
	"github.com/mesdx/tagnav/internal/notify"
	"github.com/mesdx/tagnav/internal/tags"
)

// pickOptions are the presentation flags shared by search, find and outline.
type pickOptions struct {
	first    bool
	list     bool
	open     bool
	generate bool
}

func (o *pickOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.first, "first", false, "Jump to the first match without asking")
	cmd.Flags().BoolVar(&o.list, "list", false, "Print all matches as a tree instead of picking one")
	cmd.Flags().BoolVar(&o.open, "open", false, "Open the chosen location in the configured editor")
}

func newSearchCmd() *cobra.Command {
	var opts pickOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find a symbol, or a file with @fragment, and jump to it",
		Long: `Search the loaded tag index.

A plain query matches symbols whose name contains it; a query starting with @
matches tags whose file path contains the rest. Matching is case-insensitive
and results keep tag-file order.

Examples:
  tagnav search sum
  tagnav search @controllers/user --list
  tagnav search Invoice --first --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.generate, "generate", false, "Generate the tag file first if it does not exist")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts pickOptions) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	n := notify.Terminal{W: cmd.ErrOrStderr()}
	m := ws.manager(n)
	defer func() { _ = m.Close() }()

	if _, err := loadIndex(cmd.Context(), m, opts.generate); err != nil {
		return err
	}

	lines, err := m.Search(query)
	if errors.Is(err, tags.ErrQueryEmpty) {
		return nil
	}
	if err != nil {
		return err
	}
	return pick(cmd, ws, query, lines, true, opts)
}

// pick lists lines or lets the user choose one and navigates there.
func pick(cmd *cobra.Command, ws *workspace, query string, lines []string, withPath bool, opts pickOptions) error {
	out := cmd.OutOrStdout()
	if opts.list || (!opts.first && !interactive(out)) {
		cmd.Print(resultTree(ws.root, lines))
		return nil
	}

	var selector navigate.Selector = navigate.FormSelector{Title: "Select a symbol"}
	if opts.first {
		selector = navigate.FirstSelector{}
	}
	nav := navigate.EditorNavigator{Out: out}
	if opts.open {
		nav.Editor = ws.cfg.Editor
		if nav.Editor == "" {
			cmd.PrintErrf("%s No editor configured; set $EDITOR or editor in config.yaml\n", warnStyle.Render("!"))
		}
	}

	j := &navigate.Jumper{
		Root:      ws.root,
		Selector:  selector,
		Navigator: nav,
		Notifier:  notify.Terminal{W: cmd.ErrOrStderr()},
		OnJump: func(t navigate.Target) {
			recordJump(ws, query, t)
		},
	}
	_, _, err := j.Pick(cmd.Context(), lines, withPath)
	if errors.Is(err, navigate.ErrTargetMissing) {
		// Already reported to the user.
		return nil
	}
	return err
}

func recordJump(ws *workspace, query string, t navigate.Target) {
	s, closeDB, err := ws.openHistory()
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	defer closeDB()

	_, err = s.RecordJump(history.Jump{
		Query:  strings.TrimSpace(query),
		Symbol: t.Symbol,
		Kind:   t.Kind,
		Path:   t.FilePath,
		Line:   t.Line,
	})
	if err != nil {
		log.Printf("history: %v", err)
	}
}
