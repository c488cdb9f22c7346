package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/strtab/pkg/config"
	"github.com/Sumatoshi-tech/strtab/pkg/extstr"
	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/observability"
	"github.com/Sumatoshi-tech/strtab/pkg/version"
)

// session is a configured heap plus the telemetry around it.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	heap      *heap.Heap
	pool      *extstr.Pool
}

func openSession(
	fs afero.Fs, ro *rootOptions, mode observability.AppMode, obsOpts ...observability.Option,
) (*session, error) {
	cfg, err := config.LoadConfig(ro.configPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	if ro.verbose {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure

	providers, err := observability.Init(obsCfg, obsOpts...)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	sess := &session{cfg: cfg, providers: providers}

	opts, err := cfg.HeapOptions()
	if err != nil {
		return nil, errors.Join(err, sess.Close(context.Background()))
	}

	opts = append(opts, heap.WithLogger(providers.Logger))

	if ro.poolPath != "" {
		sess.pool, err = extstr.Load(fs, ro.poolPath)
		if err != nil {
			return nil, errors.Join(err, sess.Close(context.Background()))
		}

		opts = append(opts, heap.WithExternalData(sess.pool))
		providers.Logger.Debug("external pool loaded", "path", ro.poolPath, "strings", sess.pool.Len())
	}

	sess.heap, err = heap.New(opts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create heap: %w", err), sess.Close(context.Background()))
	}

	return sess, nil
}

// Close releases the heap and flushes telemetry.
func (s *session) Close(ctx context.Context) error {
	if s.heap != nil {
		s.heap.Close()
	}

	return s.providers.Shutdown(ctx)
}

// internAll interns every token of the inputs and keeps a reference to each
// distinct string. It returns the number of tokens read.
func (s *session) internAll(fs afero.Fs, stdin readerFunc, paths []string) (int, error) {
	held := make(map[heap.Ref]struct{})
	tokens := 0

	err := scanTokens(fs, stdin, paths, func(tok []byte) error {
		ref, err := s.heap.InternChecked(tok)
		if err != nil {
			return err
		}

		tokens++

		if _, ok := held[ref]; !ok {
			s.heap.Incref(ref)
			held[ref] = struct{}{}
		}

		return nil
	})

	return tokens, err
}
