package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/history"
	"github.com/mesdx/tagnav/internal/notify"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Check that the tag file loads",
		Long:  "Read the existing tag file into memory, applying the size limit, and report what was loaded.",
		Args:  cobra.NoArgs,
		RunE:  runLoad,
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	m := ws.manager(notify.Terminal{W: cmd.ErrOrStderr()})
	defer func() { _ = m.Close() }()

	started := time.Now()
	res, err := loadIndex(cmd.Context(), m, false)
	ws.recordRun(history.KindLoad, "", started, res, err)
	if err != nil {
		return err
	}

	cmd.Printf("%s Loaded %s: %d tags, %s in %s\n", successStyle.Render("✓"),
		ws.tagPath(), res.Lines, humanBytes(res.Bytes), time.Since(started).Round(time.Millisecond))
	return nil
}
