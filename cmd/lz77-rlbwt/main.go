// Command lz77-rlbwt computes the greedy LZ77 factorization of a file in
// one pass, using an online run-length BWT as the index.
//
//	lz77-rlbwt --input text.txt --output text.lz [--verbose] [--width 32]
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
	"github.com/dd0wney/cluso-rlbwt/pkg/lz77"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
	"github.com/dd0wney/cluso-rlbwt/pkg/textio"
)

// progressStep is the verbose progress interval in characters.
const progressStep = 1_000_000

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "lz77-rlbwt: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("lz77-rlbwt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		input      = fs.String("input", "", "input file name (required)")
		output     = fs.String("output", "", "output file name or s3:// URI (required)")
		verbose    = fs.Bool("verbose", false, "print progress and debug logs")
		width      = fs.Int("width", 0, "record width in bits, 32 or 64 (default from config)")
		configPath = fs.String("config", "", "YAML configuration file")
		metricsOut = fs.String("metrics-out", "", "write Prometheus metrics to this file at exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input and --output are required", driver.ErrUsage)
	}

	rt, err := driver.Setup("lz77-rlbwt", *configPath, stderr, *verbose)
	if err != nil {
		return err
	}
	if *width != 0 {
		rt.Config.LZ77.Width = *width
	}
	if *metricsOut != "" {
		rt.Config.Metrics.Output = *metricsOut
	}
	start := time.Now()

	in, err := textio.Open(*input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := rt.Store.Create(ctx, *output)
	if err != nil {
		return err
	}
	defer driver.Close(out, &err)

	fw, err := lz77.NewWriter(out, rt.Config.LZ77.Width)
	if err != nil {
		return err
	}
	defer driver.Close(fw, &err)

	eng, err := rlbwt.New(rt.Config.Engine, rlbwt.WithLogger(rt.Logger), rlbwt.WithMetrics(rt.Metrics))
	if err != nil {
		return err
	}
	fz, err := lz77.New(eng, fw, lz77.WithLogger(rt.Logger), lz77.WithMetrics(rt.Metrics))
	if err != nil {
		return err
	}

	timer := logging.StartTimer(rt.Logger, "lz77 parse", logging.Path(*input))
	fmt.Fprintln(stdout, "LZ77 Parsing ...")
	for pos := 0; ; pos++ {
		c, rerr := in.ReadByte()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			timer.EndError(rerr)
			return rerr
		}
		if *verbose && pos > 0 && pos%progressStep == 0 {
			fmt.Fprintf(stdout, " %d characters processed ...\n", pos)
		}
		if err := fz.Feed(c); err != nil {
			timer.EndError(err)
			return err
		}
	}
	if err := fz.Finish(); err != nil {
		timer.EndError(err)
		return err
	}
	elapsed := timer.End(logging.Factors(fz.Stats().Factors), logging.Runs(eng.Runs()))

	eng.PublishMetrics()
	rt.Metrics.RecordBuild(elapsed)

	fmt.Fprintf(stdout, "LZ compression done. %.3f sec\n", time.Since(start).Seconds())
	fmt.Fprintf(stdout, "Number of factors z = %d\n", fz.Stats().Factors)
	st := eng.Stats()
	fmt.Fprintf(stdout, " Length with end marker: %d, runs: %d\n", st.LenWithEm, st.Runs)
	fmt.Fprintf(stdout, " Digest (blake2b-256): %x\n", fw.Sum())
	driver.ReportSize(stdout, eng.MemBytes())

	return rt.WriteMetrics(ctx)
}
