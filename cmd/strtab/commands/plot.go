package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/observability"
)

const (
	plotFilePerm   = 0o644
	plotBarColor   = "#5470c6"
	plotChartWidth = "100%"
	plotChartHigh  = "500px"
)

// ErrNoOutput is returned when a command that writes a file has no --output.
var ErrNoOutput = errors.New("output path is required (use --output)")

func newPlotCommand(fs afero.Fs, ro *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plot [files...]",
		Short: "Intern tokens and plot the bucket chain-length histogram as HTML",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if output == "" {
				return ErrNoOutput
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

			f, err := fs.OpenFile(output, openWriteFlags, plotFilePerm)
			if err != nil {
				return fmt.Errorf("create plot: %w", err)
			}

			err = buildChainChart(sess.heap.Stats()).Render(f)

			return errors.Join(err, f.Close())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "HTML file to write")

	return cmd
}

// buildChainChart plots how many buckets hold each chain length.
func buildChainChart(st heap.Stats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotChartWidth, Height: plotChartHigh}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Bucket chain lengths",
			Subtitle: fmt.Sprintf("%d strings in %d buckets, load %.2f", st.Strings, st.Buckets, st.LoadFactor()),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "chain length"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "buckets"}),
	)

	labels := make([]string, len(st.ChainLengths))
	data := make([]opts.BarData, len(st.ChainLengths))

	for n, buckets := range st.ChainLengths {
		labels[n] = strconv.Itoa(n)
		data[n] = opts.BarData{Value: buckets}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("buckets", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: plotBarColor}))

	return bar
}
