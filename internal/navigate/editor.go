package navigate

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// EditorNavigator prints the target as path:line (1-based) and, when an
// editor command is configured, opens it there with "+line path".
type EditorNavigator struct {
	Out    io.Writer
	Editor string // e.g. "vim" or "emacsclient -n"; empty prints only

	// run replaces exec for tests.
	run func(*exec.Cmd) error
}

// Navigate implements Navigator.
func (n EditorNavigator) Navigate(ctx context.Context, path string, line int) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTargetMissing, path)
	}
	if line < 0 {
		line = 0
	}

	if n.Out != nil {
		_, _ = fmt.Fprintf(n.Out, "%s:%d\n", path, line+1)
	}

	fields := strings.Fields(n.Editor)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:], fmt.Sprintf("+%d", line+1), path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	run := n.run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	if err := run(cmd); err != nil {
		return fmt.Errorf("open editor: %w", err)
	}
	return nil
}
