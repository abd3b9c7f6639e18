package cli

import (
	"github.com/spf13/cobra"
)

// Version is the version of the tagnav CLI.
const Version = "v0.1.0"

// NewRootCmd creates the root command for tagnav.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagnav",
		Short: "Navigate code through a ctags tag index",
		Long: "tagnav generates a ctags tag file for the current workspace, loads it, " +
			"and resolves symbol names or path fragments to source locations. " +
			"It can also serve the index to agents over MCP.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("cwd", "", "Working directory (defaults to current directory)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newOutlineCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newMcpCmd())

	return rootCmd
}
