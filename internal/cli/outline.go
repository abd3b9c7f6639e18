package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/outline"
)

func newOutlineCmd() *cobra.Command {
	var opts pickOptions

	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "List the symbols of one file and jump to one",
		Long:  "Run ctags on a single file, independently of the workspace tag file, and pick one of its symbols.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutline(cmd, args[0], opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runOutline(cmd *cobra.Command, file string, opts pickOptions) error {
	// Resolve before --cwd moves the process.
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", file, err)
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	engine := &outline.Engine{Source: ws.runner()}
	lines, err := engine.Outline(cmd.Context(), abs)
	if errors.Is(err, outline.ErrTransientFile) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		cmd.Printf("%s No symbols in %s\n", infoStyle.Render("→"), file)
		return nil
	}
	return pick(cmd, ws, "", lines, false, opts)
}
