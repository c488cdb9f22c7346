package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/observability"
)

// Dump formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"

	yamlIndent = 2
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown dump format")

func newDumpCommand(fs afero.Fs, ro *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump [files...]",
		Short: "Intern tokens and dump the string table bucket by bucket",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != formatTable && format != formatYAML && format != formatJSON {
				return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
			}

			sess, err := openSession(fs, ro, observability.ModeCLI)
			if err != nil {
				return err
			}

			defer func() { err = errors.Join(err, sess.Close(context.WithoutCancel(cmd.Context()))) }()

			_, err = sess.internAll(fs, func() io.Reader { return cmd.InOrStdin() }, args)
			if err != nil {
				return err
			}

			return writeDump(cmd.OutOrStdout(), sess.heap, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, yaml or json")

	return cmd
}

func writeDump(w io.Writer, hp *heap.Heap, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(hp.Snapshot())
		if err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}

		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(hp.Snapshot())
		if err != nil {
			return fmt.Errorf("json encode: %w", err)
		}

		return nil
	default:
		hp.Dump(w)

		return nil
	}
}
