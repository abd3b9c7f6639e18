package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/config"
	"github.com/mesdx/tagnav/internal/mcpstate"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the workspace, tag file and MCP server state",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	cmd.Printf("Root:      %s\n", ws.root)
	cmd.Printf("Config:    %s\n", configSource(ws.toolDir))
	cmd.Printf("Command:   %s\n", ws.runner().GenerateCommand())
	cmd.Printf("Tag file:  %s\n", tagFileState(ws))

	if s, closeDB, err := ws.openHistory(); err != nil {
		log.Printf("history: %v", err)
	} else {
		defer closeDB()
		last, err := s.LastRun()
		switch {
		case err != nil:
			log.Printf("history: %v", err)
		case last == nil:
			cmd.Printf("Last run:  %s\n", dimStyle.Render("none"))
		default:
			outcome := successStyle.Render("ok")
			if last.Error != "" {
				outcome = warnStyle.Render("failed: " + last.Error)
			}
			cmd.Printf("Last run:  %s %s, %d tags (%s)\n", last.Kind,
				last.StartedAt.Local().Format("2006-01-02 15:04:05"), last.Lines, outcome)
		}
	}

	running, state, err := mcpstate.IsRunning(ws.toolDir)
	switch {
	case err != nil:
		cmd.Printf("MCP:       %s\n", warnStyle.Render(err.Error()))
	case running:
		cmd.Printf("MCP:       running (PID %d, since %s)\n", state.PID, state.StartedAt.Format("2006-01-02 15:04:05"))
	default:
		cmd.Printf("MCP:       %s\n", dimStyle.Render("not running"))
	}
	return nil
}

func configSource(toolDir string) string {
	if _, err := os.Stat(config.ConfigPath(toolDir)); err == nil {
		return config.ConfigPath(toolDir)
	}
	return dimStyle.Render("defaults")
}

func tagFileState(ws *workspace) string {
	info, err := os.Stat(ws.tagPath())
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("%s (%s)", ws.tagPath(), warnStyle.Render("missing, run tagnav generate"))
	}
	if err != nil {
		return fmt.Sprintf("%s (%s)", ws.tagPath(), warnStyle.Render(err.Error()))
	}
	state := fmt.Sprintf("%s (%s, modified %s)", ws.tagPath(), humanBytes(info.Size()),
		info.ModTime().Format(time.DateTime))
	if info.Size() > ws.cfg.MaxTagFileBytes() {
		state += " " + warnStyle.Render(fmt.Sprintf("exceeds the %d MB load limit", ws.cfg.MaxTagFileMB))
	}
	return state
}
