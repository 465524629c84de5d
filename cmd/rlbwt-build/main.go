// Command rlbwt-build builds the run-length BWT of a text or FASTA file and
// optionally exports it.
//
//	rlbwt-build --input reads.fa --fasta [--output reads.bwt --format snappy]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dd0wney/cluso-rlbwt/pkg/driver"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
	"github.com/dd0wney/cluso-rlbwt/pkg/sampling"
	"github.com/dd0wney/cluso-rlbwt/pkg/textio"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "rlbwt-build: %v\n", err)
		}
		os.Exit(1)
	}
}

// source is the prepared input: the bytes to index and the record
// terminator, if any.
type source struct {
	text       []byte
	terminator byte
	records    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("rlbwt-build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		input      = fs.String("input", "", "input file name (required)")
		output     = fs.String("output", "", "BWT output file name or s3:// URI")
		fasta      = fs.Bool("fasta", false, "parse the input as FASTA records")
		newline    = fs.String("newline", "", "newline remap policy: none, zero or one")
		format     = fs.String("format", "", "BWT output format: runs, snappy or expanded")
		progress   = fs.Int("progress", -1, "report every N records, 0 disables (default from config)")
		detail     = fs.Bool("detail", false, "dump the structure after every extend")
		verbose    = fs.Bool("verbose", false, "debug logging")
		configPath = fs.String("config", "", "YAML configuration file")
		metricsOut = fs.String("metrics-out", "", "write Prometheus metrics to this file at exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input is required", driver.ErrUsage)
	}

	rt, err := driver.Setup("rlbwt-build", *configPath, stderr, *verbose)
	if err != nil {
		return err
	}
	cfg := &rt.Config
	if *fasta {
		cfg.Input.FASTA = true
	}
	if *newline != "" {
		cfg.Input.Newline = *newline
	}
	if *format != "" {
		cfg.BWT.Format = *format
	}
	if *progress >= 0 {
		cfg.Input.Progress = *progress
	}
	if *metricsOut != "" {
		cfg.Metrics.Output = *metricsOut
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrUsage, err)
	}
	cfg.Engine.Sampler = sampling.NameNull

	src, err := load(*input, cfg.Input.FASTA, cfg.Newline())
	if err != nil {
		return err
	}

	eng, err := rlbwt.New(cfg.Engine, rlbwt.WithLogger(rt.Logger), rlbwt.WithMetrics(rt.Metrics))
	if err != nil {
		return err
	}

	start := time.Now()
	timer := logging.StartTimer(rt.Logger, "rlbwt build", logging.Path(*input))
	var records int
	for _, c := range src.text {
		eng.Extend(c)
		if *detail {
			if err := eng.WriteDebug(stdout); err != nil {
				return err
			}
		}
		if !src.records || c != src.terminator {
			continue
		}
		records++
		if n := cfg.Input.Progress; n > 0 && records%n == 0 {
			printProgress(stdout, records, eng.Len(), time.Since(start))
			eng.PublishMetrics()
		}
	}
	elapsed := timer.End(logging.Int("records", records), logging.Runs(eng.Runs()))
	printProgress(stdout, records, eng.Len(), elapsed)

	eng.PublishMetrics()
	rt.Metrics.RecordBuild(elapsed)

	st := eng.Stats()
	fmt.Fprintf(stdout, "Length with end marker: %d, runs: %d, end marker row: %d\n", st.LenWithEm, st.Runs, st.EmPos)
	fmt.Fprintf(stdout, "Tree: %d blocks, height %d, %d block splits, %d node splits\n",
		st.Tree.Blocks, st.Tree.Height, st.Tree.BlockSplits, st.Tree.NodeSplits)
	driver.ReportSize(stdout, st.MemBytes)

	if *output != "" {
		if err := export(ctx, rt, eng, *output); err != nil {
			return err
		}
	}
	return rt.WriteMetrics(ctx)
}

func load(path string, fasta bool, mode textio.NewlineMode) (source, error) {
	in, err := textio.Open(path)
	if err != nil {
		return source{}, err
	}
	defer in.Close()

	if fasta {
		f, err := textio.LoadFASTA(in, textio.DefaultTerminator)
		if err != nil {
			return source{}, err
		}
		return source{text: f.Text, terminator: f.Terminator, records: true}, nil
	}

	data, err := in.Bytes()
	if err != nil {
		return source{}, err
	}
	if mode == textio.NewlineNone {
		return source{text: data}, nil
	}
	rm := textio.NewRemapper(mode)
	if err := rm.MapAll(data); err != nil {
		return source{}, err
	}
	sentinel, _ := rm.Sentinel()
	return source{text: data, terminator: sentinel, records: true}, nil
}

func printProgress(w io.Writer, records int, symbols uint64, elapsed time.Duration) {
	fmt.Fprintf(w, "records: %d  symbols: %d  elapsed: %d ms\n", records, symbols, elapsed.Milliseconds())
}

func export(ctx context.Context, rt *driver.Runtime, eng *rlbwt.Engine, uri string) (err error) {
	w, err := rt.Store.Create(ctx, uri)
	if err != nil {
		return err
	}
	defer driver.Close(w, &err)

	n, err := eng.WriteBWT(w, rt.Config.Format())
	if err != nil {
		return fmt.Errorf("export %s: %w", uri, err)
	}
	rt.Logger.Info("bwt exported", logging.Path(uri), logging.Bytes(uint64(n)), logging.String("format", rt.Config.Format().String()))
	return nil
}
