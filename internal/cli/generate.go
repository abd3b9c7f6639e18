package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/history"
	"github.com/mesdx/tagnav/internal/notify"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Run ctags over the workspace and load the result",
		Long: "Run the configured ctags command recursively in the workspace root, " +
			"writing the tag file there, then load it to report its size.",
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	m := ws.manager(notify.Terminal{W: cmd.ErrOrStderr()})
	defer func() { _ = m.Close() }()

	command := ws.runner().GenerateCommand()
	cmd.Printf("%s Running %s in %s\n", infoStyle.Render("→"), command, ws.root)

	started := time.Now()
	res, err := m.RequestGenerate(cmd.Context()).Wait(cmd.Context())
	ws.recordRun(history.KindGenerate, command, started, res, err)
	if err != nil {
		return err
	}

	cmd.Printf("%s Generated %s: %d tags, %s in %s\n", successStyle.Render("✓"),
		ws.tagPath(), res.Lines, humanBytes(res.Bytes), res.Duration.Round(time.Millisecond))
	return nil
}
