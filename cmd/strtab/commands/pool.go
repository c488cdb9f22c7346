package commands

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/strtab/pkg/extstr"
)

// openWriteFlags truncates or creates output files.
const openWriteFlags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC

func newPoolCommand(fs afero.Fs) *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage external string pools",
	}

	poolCmd.AddCommand(newPoolBuildCommand(fs))

	return poolCmd
}

func newPoolBuildCommand(fs afero.Fs) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Build an LZ4-compressed pool from whitespace-separated tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return ErrNoOutput
			}

			tokens, err := collectTokens(fs, func() io.Reader { return cmd.InOrStdin() }, args)
			if err != nil {
				return err
			}

			pool := extstr.NewPool(tokens)

			err = extstr.Save(fs, output, pool)
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s: %d strings, %s\n",
				output, pool.Len(), humanize.IBytes(uint64(pool.Size())))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "pool file to write")

	return cmd
}
