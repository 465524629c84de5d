// Command rlbwt-inspect browses an exported run-length BWT in the terminal
// and answers rank, select and access queries over its rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-rlbwt/pkg/driver"
	"github.com/dd0wney/cluso-rlbwt/pkg/logging"
	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
)

func main() {
	input := flag.String("input", "", "exported BWT (runs or snappy format) file name or s3:// URI")
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "--input is required")
		os.Exit(1)
	}

	eng, err := load(context.Background(), *input, *configPath, io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rlbwt-inspect: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(eng, *input), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rlbwt-inspect: %v\n", err)
		os.Exit(1)
	}
}

func load(ctx context.Context, uri, configPath string, logOut io.Writer) (*rlbwt.Engine, error) {
	rt, err := driver.Setup("rlbwt-inspect", configPath, logOut, false)
	if err != nil {
		return nil, err
	}
	r, err := rt.Store.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	eng, err := rlbwt.Load(r, rt.Config.Engine, rlbwt.WithLogger(rt.Logger))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", uri, err)
	}
	rt.Logger.Info("bwt loaded", logging.Path(uri), logging.Runs(eng.Runs()))
	return eng, nil
}
