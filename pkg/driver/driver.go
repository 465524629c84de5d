// Package driver holds the start-up and reporting steps shared by the
// command line tools.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-rlbwt/pkg/config"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/metrics"
	"github.com/dd0wney/cluso-rlbwt/pkg/objectstore"
)

// ErrUsage reports a missing or malformed command line flag.
var ErrUsage = errors.New("usage")

// Runtime is the per-invocation state of a tool.
type Runtime struct {
	Config  config.Config
	Logger  logging.Logger
	Metrics *metrics.Registry
	Store   *objectstore.Store
	BuildID string
}

// Setup loads the configuration at path (or the defaults when path is
// empty) and builds a logger on w tagged with a fresh build id. verbose
// forces debug logging.
func Setup(tool, path string, w io.Writer, verbose bool) (*Runtime, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = logging.DebugLevel
	}
	id := uuid.NewString()
	logger := logging.NewLogger(w, logging.ParseFormat(cfg.Logging.Format), level).
		With(logging.Component(tool), logging.BuildID(id))

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
		Store:   objectstore.New(cfg.S3),
		BuildID: id,
	}, nil
}

// WriteMetrics writes the text exposition to the configured metrics output.
// It does nothing when no output is set.
func (rt *Runtime) WriteMetrics(ctx context.Context) error {
	uri := rt.Config.Metrics.Output
	if uri == "" {
		return nil
	}
	rt.Metrics.UpdateSystemMetrics()
	w, err := rt.Store.Create(ctx, uri)
	if err != nil {
		return err
	}
	if err := rt.Metrics.WriteText(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write metrics %s: %w", uri, err)
	}
	rt.Logger.Info("metrics written", logging.Path(uri))
	return nil
}

// ReportSize prints the structure size in bits, bytes, KB and MB.
func ReportSize(w io.Writer, memBytes uint64) {
	bits := memBytes * 8
	fmt.Fprintf(w, " Size of the structures (bits): %d\n", bits)
	fmt.Fprintf(w, " Size of the structures (Bytes): %d\n", memBytes)
	fmt.Fprintf(w, " Size of the structures (KB): %d\n", memBytes/1024)
	fmt.Fprintf(w, " Size of the structures (MB): %d\n", memBytes/1024/1024)
}

// Close closes c and keeps the first error in *err.
func Close(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
