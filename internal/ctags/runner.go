// Package ctags runs the external ctags executable.
package ctags

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner invokes ctags with fixed option sets for whole-tree generation and
// for single-file outlines.
type Runner struct {
	Command      string   // executable, e.g. "ctags"
	GenerateArgs []string // options for recursive generation
	OutlineArgs  []string // options for a single file; must write to stdout
	TagFileName  string   // generation output, relative to the working dir
}

// SplitOptions splits an option string from the configuration into args.
func SplitOptions(opts string) []string {
	return strings.Fields(opts)
}

// GenerateCommand returns the command line Generate runs, for display.
func (r Runner) GenerateCommand() string {
	return strings.Join(append([]string{r.Command}, r.generateArgs()...), " ")
}

func (r Runner) generateArgs() []string {
	args := append([]string{}, r.GenerateArgs...)
	return append(args, "-f", r.TagFileName)
}

// Generate runs ctags in dir, writing the tag file there.
func (r Runner) Generate(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, r.Command, r.generateArgs()...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(r.Command, err, stderr.String())
	}
	return nil
}

// Outline runs ctags against a single file and returns its stdout.
func (r Runner) Outline(ctx context.Context, file string) ([]byte, error) {
	args := append(append([]string{}, r.OutlineArgs...), file)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), commandError(r.Command, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func commandError(command string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", command, err)
	}
	return fmt.Errorf("%s: %w: %s", command, err, stderr)
}
