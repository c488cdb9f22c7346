package commands

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/strtab/pkg/observability"
)

func newInternCommand(fs afero.Fs, ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "intern [files...]",
		Short: "Intern whitespace-separated tokens and print table statistics",
		Long:  "Reads tokens from the given files, or stdin when none is given.",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sess, err := openSession(fs, ro, observability.ModeCLI)
			if err != nil {
				return err
			}

			defer func() { err = errors.Join(err, sess.Close(context.WithoutCancel(cmd.Context()))) }()

			tokens, err := sess.internAll(fs, func() io.Reader { return cmd.InOrStdin() }, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := sess.heap.Stats()

			color.New(color.FgGreen).Fprintf(out, "Interned %d tokens into %d strings\n", tokens, st.Strings)
			renderStats(out, st)

			return nil
		},
	}
}
