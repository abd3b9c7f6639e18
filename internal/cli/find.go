package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/notify"
	"github.com/mesdx/tagnav/internal/search"
	"github.com/mesdx/tagnav/internal/tags"
)

func newFindCmd() *cobra.Command {
	var (
		opts  pickOptions
		limit int
	)

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy symbol lookup, tolerant of typos",
		Long: `Rank symbols by approximate name match.

Exact names come first, then prefixes, substrings and names within a small
edit distance of the query.

Examples:
  tagnav find calcTotl
  tagnav find invoic --limit 5 --list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, args[0], limit, opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.generate, "generate", false, "Generate the tag file first if it does not exist")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}

func runFind(cmd *cobra.Command, query string, limit int, opts pickOptions) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	m := ws.manager(notify.Terminal{W: cmd.ErrOrStderr()})
	defer func() { _ = m.Close() }()

	if _, err := loadIndex(cmd.Context(), m, opts.generate); err != nil {
		return err
	}

	idx, err := search.Build(m.Store())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	hits, err := idx.Fuzzy(query, limit)
	if errors.Is(err, tags.ErrQueryEmpty) {
		return nil
	}
	if err != nil {
		return err
	}
	return pick(cmd, ws, query, search.Lines(hits), true, opts)
}
