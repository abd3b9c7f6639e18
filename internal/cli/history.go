package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tag generations and jumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries per section")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	s, closeDB, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := s.RecentRuns(limit)
	if err != nil {
		return err
	}
	cmd.Println("Runs:")
	if len(runs) == 0 {
		cmd.Printf("  %s\n", dimStyle.Render("none"))
	}
	for _, r := range runs {
		outcome := successStyle.Render("✓")
		if r.Error != "" {
			outcome = warnStyle.Render("! " + r.Error)
		}
		cmd.Printf("  %s  %-8s %6d tags %10s %8s  %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Kind, r.Lines,
			humanBytes(r.Bytes), r.Duration.Round(time.Millisecond), outcome)
	}

	jumps, err := s.RecentJumps(limit)
	if err != nil {
		return err
	}
	cmd.Println("Jumps:")
	if len(jumps) == 0 {
		cmd.Printf("  %s\n", dimStyle.Render("none"))
	}
	for _, j := range jumps {
		cmd.Printf("  %s  %s  %s:%d\n",
			j.JumpedAt.Local().Format(time.DateTime), j.Symbol, j.Path, j.Line+1)
	}
	return nil
}
