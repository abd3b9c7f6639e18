package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mesdx/tagnav/internal/config"
	"github.com/mesdx/tagnav/internal/db"
	"github.com/mesdx/tagnav/internal/ignore"
	"github.com/mesdx/tagnav/internal/repo"
)

func newInitCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize tagnav in the current workspace",
		Long: "Write .tagnav/config.yaml, create the history database and offer to add " +
			"the tag file and .tagnav/ to .gitignore and .dockerignore.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")

	return cmd
}

func runInit(cmd *cobra.Command, yes bool) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	// Saved values come from the file only, never from the environment.
	cfg, err := config.LoadFile(ws.toolDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	prompts := !yes && interactive(cmd.OutOrStdout())

	cmd.Printf("%s Initializing tagnav in: %s\n", infoStyle.Render("→"), ws.root)

	if prompts {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("ctags executable").
					Description("Universal ctags is expected; a path or a name on $PATH.").
					Placeholder(config.DefaultCommand).
					Value(&cfg.Command),
				huh.NewInput().
					Title("Tag file").
					Description("Written to the workspace root by tagnav generate.").
					Placeholder(config.DefaultTagFileName).
					Validate(validateTagFileName).
					Value(&cfg.TagFileName),
				huh.NewInput().
					Title("Generate options").
					Description("Passed to ctags before -f <tag file>.").
					Value(&cfg.GenerateOptions),
			),
		)
		if err := form.RunWithContext(cmd.Context()); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = config.DefaultCommand
	}
	if err := validateTagFileName(cfg.TagFileName); err != nil {
		return err
	}

	if _, err := repo.EnsureToolDir(ws.root); err != nil {
		return err
	}
	if err := config.Save(cfg, ws.toolDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	cmd.Printf("%s Configuration saved to: %s\n", successStyle.Render("✓"), config.ConfigPath(ws.toolDir))

	dbPath := db.DatabasePath(ws.toolDir)
	if err := db.Initialize(dbPath); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	cmd.Printf("%s Database initialized at: %s\n", successStyle.Render("✓"), dbPath)

	if prompts {
		if err := ignore.HandleIgnoreFiles(ws.root, cfg.TagFileName, ignore.Confirm, cmd); err != nil {
			cmd.Printf("%s Warning: failed to update ignore files: %v\n", warnStyle.Render("!"), err)
		}
	}

	cmd.Printf("%s Run %s to build the tag index\n", infoStyle.Render("→"), successStyle.Render("tagnav generate"))
	return nil
}

func validateTagFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("tag file name is required")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("tag file name must not contain a path separator: %q", name)
	}
	return nil
}
