// Command lz77-decode expands a factor stream written by lz77-rlbwt back to
// the original text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-rlbwt/pkg/driver"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/lz77"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "lz77-decode: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("lz77-decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		input      = fs.String("input", "", "factor stream file name or s3:// URI (required)")
		output     = fs.String("output", "", "decoded text file name or s3:// URI (required)")
		width      = fs.Int("width", 0, "record width in bits, 32 or 64 (default from config)")
		configPath = fs.String("config", "", "YAML configuration file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		fs.Usage()
		return fmt.Errorf("%w: --input and --output are required", driver.ErrUsage)
	}

	rt, err := driver.Setup("lz77-decode", *configPath, stderr, false)
	if err != nil {
		return err
	}
	if *width != 0 {
		rt.Config.LZ77.Width = *width
	}

	in, err := rt.Store.Open(ctx, *input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := rt.Store.Create(ctx, *output)
	if err != nil {
		return err
	}
	defer driver.Close(out, &err)

	timer := logging.StartTimer(rt.Logger, "lz77 decode", logging.Path(*input))
	n, err := lz77.DecodeStream(in, out, rt.Config.LZ77.Width)
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End(logging.Bytes(uint64(n)))
	return nil
}
