// Package commands implements the strtab CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/strtab/pkg/version"
)

const (
	configFlag  = "config"
	poolFlag    = "pool"
	verboseFlag = "verbose"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	poolPath   string
	verbose    bool
}

// NewRootCommand builds the strtab command tree. Files are read and written
// through fs.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	ro := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "strtab",
		Short: "Interned string table toolkit",
		Long: `strtab drives an interned string heap: it interns tokens, benchmarks
the bucket table, dumps and plots its layout, and builds external string pools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ro.configPath, configFlag, "", "config file (default .strtab.yaml in CWD or $HOME)")
	flags.StringVar(&ro.poolPath, poolFlag, "", "external string pool built with 'strtab pool build'")
	flags.BoolVarP(&ro.verbose, verboseFlag, "v", false, "debug logging")

	rootCmd.AddCommand(
		newInternCommand(fs, ro),
		newBenchCommand(fs, ro),
		newDumpCommand(fs, ro),
		newPlotCommand(fs, ro),
		newPoolCommand(fs),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strtab %s\n", version.String())
		},
	}
}
