package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/observability"
)

const (
	defaultBenchOps      = 1_000_000
	defaultBenchDistinct = 10_000
	defaultBenchBatch    = 4096
	defaultBenchSeed     = 1

	// releaseOneIn releases a held string on roughly one op in this many.
	releaseOneIn = 8

	// indexKeyEvery makes every n-th key a decimal array index.
	indexKeyEvery = 4

	readHeaderTimeout = 5 * time.Second
)

// ErrInvalidBench is returned for non-positive workload sizes.
var ErrInvalidBench = errors.New("ops, distinct and batch must be positive")

type benchOptions struct {
	ops         int
	distinct    int
	batch       int
	seed        int64
	metricsAddr string
}

func newBenchCommand(fs afero.Fs, ro *rootOptions) *cobra.Command {
	bo := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic intern/release workload against the string table",
		Long: `Interns keys drawn from a fixed key space, randomly releasing held strings
so the table both grows and shrinks. With --metrics-addr the run's OpenTelemetry
metrics are served on /metrics until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, fs, ro, bo)
		},
	}

	cmd.Flags().IntVar(&bo.ops, "n", defaultBenchOps, "number of operations")
	cmd.Flags().IntVar(&bo.distinct, "distinct", defaultBenchDistinct, "size of the key space")
	cmd.Flags().IntVar(&bo.batch, "batch", defaultBenchBatch, "operations per metrics batch")
	cmd.Flags().Int64Var(&bo.seed, "seed", defaultBenchSeed, "workload random seed")
	cmd.Flags().StringVar(&bo.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runBench(cmd *cobra.Command, fs afero.Fs, ro *rootOptions, bo *benchOptions) (err error) {
	if bo.ops <= 0 || bo.distinct <= 0 || bo.batch <= 0 {
		return ErrInvalidBench
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var obsOpts []observability.Option

	var metricsHandler http.Handler

	if bo.metricsAddr != "" {
		reader, handler, promErr := observability.PrometheusExporter()
		if promErr != nil {
			return promErr
		}

		obsOpts = append(obsOpts, observability.WithMetricReader(reader))
		metricsHandler = handler
	}

	sess, err := openSession(fs, ro, observability.ModeBench, obsOpts...)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, sess.Close(context.WithoutCancel(ctx))) }()

	tm, err := observability.NewTableMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	var srv *http.Server

	if metricsHandler != nil {
		srv, err = serveMetrics(bo.metricsAddr, metricsHandler, out)
		if err != nil {
			return err
		}

		defer srv.Close()
	}

	ctx, span := sess.providers.Tracer.Start(ctx, "strtab.bench")
	defer span.End()

	start := time.Now()

	err = benchWorkload(ctx, sess.heap, tm, bo)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	st := sess.heap.Stats()
	tm.RecordStats(ctx, st)

	color.New(color.FgGreen).Fprintf(out, "%d ops in %s (%.0f ops/s)\n",
		bo.ops, elapsed.Round(time.Millisecond), float64(bo.ops)/elapsed.Seconds())
	renderStats(out, st)

	if srv != nil {
		color.New(color.FgCyan).Fprintln(out, "Serving metrics until interrupted")
		<-ctx.Done()
	}

	return nil
}

// benchWorkload performs bo.ops operations. Each picks a key; a held key is
// released one time in releaseOneIn, otherwise the key is interned and held.
func benchWorkload(ctx context.Context, hp *heap.Heap, tm *observability.TableMetrics, bo *benchOptions) error {
	rng := rand.New(rand.NewSource(bo.seed)) //nolint:gosec // reproducible workload, not security sensitive.

	keys := make([][]byte, bo.distinct)
	for i := range keys {
		if i%indexKeyEvery == 0 {
			keys[i] = strconv.AppendInt(nil, int64(i), 10)
		} else {
			keys[i] = fmt.Appendf(nil, "key-%d", i)
		}
	}

	held := make([]heap.Ref, bo.distinct)
	batchStart := time.Now()

	for op := range bo.ops {
		k := rng.Intn(bo.distinct)

		if !held[k].IsNil() && rng.Intn(releaseOneIn) == 0 {
			hp.Decref(held[k])
			held[k] = heap.Ref{}
		} else if held[k].IsNil() {
			ref, err := hp.InternChecked(keys[k])
			if err != nil {
				return err
			}

			hp.Incref(ref)
			held[k] = ref
		} else {
			hp.Intern(keys[k])
		}

		if (op+1)%bo.batch == 0 {
			tm.RecordBatch(ctx, time.Since(batchStart))
			tm.RecordStats(ctx, hp.Stats())

			if ctx.Err() != nil {
				return ctx.Err()
			}

			batchStart = time.Now()
		}
	}

	return nil
}

func serveMetrics(addr string, handler http.Handler, out io.Writer) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}

	go func() { _ = srv.Serve(ln) }()

	color.New(color.FgCyan).Fprintf(out, "Metrics on http://%s/metrics\n", ln.Addr())

	return srv, nil
}
