package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/config"
	"github.com/mesdx/tagnav/internal/ctags"
	"github.com/mesdx/tagnav/internal/db"
	"github.com/mesdx/tagnav/internal/history"
	"github.com/mesdx/tagnav/internal/manager"
	"github.com/mesdx/tagnav/internal/repo"
)

const logFileName = "tagnav.log"

// workspace is the root a command operates on, with its configuration.
type workspace struct {
	root    string
	toolDir string
	cfg     *config.Config
}

// openWorkspace honours --cwd, finds the root, loads its configuration and
// sends the standard logger to the workspace log file.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	cwd, err := cmd.Flags().GetString("cwd")
	if err != nil {
		return nil, fmt.Errorf("failed to get cwd flag: %w", err)
	}
	if cwd != "" {
		info, err := os.Stat(cwd)
		if err != nil {
			return nil, fmt.Errorf("failed to access cwd directory %q: %w", cwd, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cwd path %q is not a directory", cwd)
		}
		if err := os.Chdir(cwd); err != nil {
			return nil, fmt.Errorf("failed to change to directory %q: %w", cwd, err)
		}
	}

	root, err := repo.FindRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace root: %w", err)
	}
	ws := &workspace{root: root, toolDir: repo.ToolDir(root)}

	// The MCP log starts fresh on each server start, like a session log.
	if err := initLog(ws.toolDir, cmd.Name() == "mcp"); err != nil {
		log.SetOutput(io.Discard)
		cmd.PrintErrf("%s Warning: logging disabled: %v\n", warnStyle.Render("!"), err)
	}

	cfg, err := config.Load(ws.toolDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	ws.cfg = cfg
	log.Printf("%s: root=%s tagFile=%s", cmd.CommandPath(), root, cfg.TagFileName)
	return ws, nil
}

func initLog(toolDir string, truncate bool) error {
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(filepath.Join(toolDir, logFileName), flags, 0644)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	return nil
}

func (w *workspace) tagPath() string {
	return filepath.Join(w.root, w.cfg.TagFileName)
}

func (w *workspace) runner() ctags.Runner {
	return ctags.Runner{
		Command:      w.cfg.Command,
		GenerateArgs: ctags.SplitOptions(w.cfg.GenerateOptions),
		OutlineArgs:  ctags.SplitOptions(w.cfg.OutlineOptions),
		TagFileName:  w.cfg.TagFileName,
	}
}

func (w *workspace) manager(n manager.Notifier) *manager.Manager {
	return manager.Open(w.root, manager.Options{
		TagFileName:     w.cfg.TagFileName,
		MaxTagFileBytes: w.cfg.MaxTagFileBytes(),
		Generator:       w.runner(),
		Notifier:        n,
		OnTransition: func(from, to manager.Status) {
			log.Printf("index: %s -> %s", from, to)
		},
	})
}

// openHistory opens the workspace database. Callers treat failures as
// warnings: history never blocks navigation.
func (w *workspace) openHistory() (*history.Store, func(), error) {
	d, err := db.Open(db.DatabasePath(w.toolDir))
	if err != nil {
		return nil, nil, err
	}
	s, err := history.Open(d, w.root)
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	return s, func() { _ = d.Close() }, nil
}

// recordRun stores a generation or load in the history, best-effort.
func (w *workspace) recordRun(kind, command string, started time.Time, res manager.Result, runErr error) {
	s, closeDB, err := w.openHistory()
	if err != nil {
		log.Printf("history: %v", err)
		return
	}
	defer closeDB()

	run := history.Run{
		Kind:      kind,
		Command:   command,
		StartedAt: started,
		Duration:  time.Since(started),
		Lines:     res.Lines,
		Bytes:     res.Bytes,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if _, err := s.RecordRun(run); err != nil {
		log.Printf("history: %v", err)
	}
}

// loadIndex loads the tag file, generating it first when it is missing and
// generate is set.
func loadIndex(ctx context.Context, m *manager.Manager, generate bool) (manager.Result, error) {
	c, err := m.RequestLoad(ctx)
	if errors.Is(err, manager.ErrIndexMissing) && generate {
		c, err = m.RequestGenerate(ctx), nil
	}
	if err != nil {
		return manager.Result{}, err
	}
	return c.Wait(ctx)
}
