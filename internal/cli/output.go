package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/disiqueira/gotree/v3"
	"golang.org/x/term"

	"github.com/mesdx/tagnav/internal/tags"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// interactive reports whether prompts can be shown: stdin and w must both be
// terminals.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// resultTree renders tag lines grouped by file, in first-seen order, as
// a tree under rootLabel.
func resultTree(rootLabel string, lines []string) string {
	tree := gotree.New(rootLabel)
	files := map[string]gotree.Tree{}
	for _, line := range lines {
		rec, ok := tags.Parse(line)
		if !ok {
			continue
		}
		node, ok := files[rec.FilePath]
		if !ok {
			node = tree.Add(filepath.ToSlash(rec.FilePath))
			files[rec.FilePath] = node
		}
		node.Add(fmt.Sprintf("%s (%s) :%d", rec.Symbol, rec.NormalizedKind(), rec.Line+1))
	}
	return tree.Print()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
