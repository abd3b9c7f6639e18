package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"
)

const (
	gitignoreFile    = ".gitignore"
	dockerignoreFile = ".dockerignore"
	toolDirPattern   = ".tagnav/"
	commentMarker    = "# tagnav"
)

var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Prompter asks a yes/no question.
type Prompter func(title, description string) (bool, error)

// Confirm asks with a huh confirm form.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive prompt failed: %w", err)
	}
	return ok, nil
}

// Entries returns the patterns tagnav wants ignored: the tool directory and
// the tag file.
func Entries(tagFileName string) []string {
	return []string{toolDirPattern, tagFileName}
}

// HandleIgnoreFiles offers to add the tool directory and the tag file to
// .gitignore and .dockerignore when those files exist and do not already
// ignore them.
func HandleIgnoreFiles(repoRoot, tagFileName string, prompt Prompter, cmd *cobra.Command) error {
	entries := Entries(tagFileName)

	if err := handleIgnoreFile(filepath.Join(repoRoot, gitignoreFile), "Git",
		"prevents committing the tag file and local state to version control", entries, prompt, cmd); err != nil {
		return fmt.Errorf("failed to handle .gitignore: %w", err)
	}
	if err := handleIgnoreFile(filepath.Join(repoRoot, dockerignoreFile), "Docker",
		"keeps the tag file and local database out of the build context", entries, prompt, cmd); err != nil {
		return fmt.Errorf("failed to handle .dockerignore: %w", err)
	}
	return nil
}

func handleIgnoreFile(filePath, toolName, impact string, entries []string, prompt Prompter, cmd *cobra.Command) error {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	missing, err := Missing(filePath, entries)
	if err != nil {
		return fmt.Errorf("failed to check ignore file: %w", err)
	}
	if len(missing) == 0 {
		return nil
	}

	list := strings.Join(missing, ", ")
	ok, err := prompt(fmt.Sprintf("Add %s to %s?", list, toolName), "This "+impact)
	if err != nil {
		return err
	}
	if !ok {
		cmd.Printf("%s Skipped adding to %s\n", infoStyle.Render("→"), toolName)
		return nil
	}

	if err := Append(filePath, missing); err != nil {
		return fmt.Errorf("failed to add ignore entry: %w", err)
	}
	cmd.Printf("✓ Added %s to %s\n", list, toolName)
	return nil
}

// Missing returns the entries that the ignore file at filePath does not
// already cover, evaluated with gitignore semantics.
func Missing(filePath string, entries []string) ([]string, error) {
	gi, err := gitignore.CompileIgnoreFile(filePath)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, e := range entries {
		if !covered(gi, e) {
			missing = append(missing, e)
		}
	}
	return missing, nil
}

func covered(gi *gitignore.GitIgnore, entry string) bool {
	if dir, ok := strings.CutSuffix(entry, "/"); ok {
		// A directory counts as ignored when its contents are.
		return gi.MatchesPath(dir) || gi.MatchesPath(dir+"/tagnav.db")
	}
	return gi.MatchesPath(entry)
}

// Append adds entries under a marker comment. Entries already covered are
// skipped, so repeated calls are harmless.
func Append(filePath string, entries []string) error {
	missing, err := Missing(filePath, entries)
	if err != nil {
		return fmt.Errorf("failed to re-check ignore file: %w", err)
	}
	if len(missing) == 0 {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var b strings.Builder
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteString("\n")
	}
	b.WriteString("\n" + commentMarker + "\n")
	for _, e := range missing {
		b.WriteString(e + "\n")
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(b.String())
	return err
}
