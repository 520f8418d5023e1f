package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/segsim/engine"
	"github.com/vkngwrapper/segsim/input"
	"github.com/vkngwrapper/segsim/report"
	"golang.org/x/exp/slog"
)

type runConfig struct {
	memorySize int
	seed       int64
	segments   []input.Request

	json    bool
	chart   bool
	width   int
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.ReadCloser, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("segsim", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "segsim - contiguous memory segmentation simulator\n\n")
		fmt.Fprintf(flags.Output(), "Usage: segsim [options]\n\n")
		fmt.Fprintf(flags.Output(), "Segments are read from -layout, from -segments, or interactively when neither is given.\n\n")
		fmt.Fprintf(flags.Output(), "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(flags.Output(), "\nInteractive mode prompts for the memory size, the number of segments, and then one\n")
		fmt.Fprintf(flags.Output(), "'name size' line per segment, e.g. 'code 40'.\n")
	}

	memorySize := flags.Int("memory", 0, "Size of the address space")
	segmentList := flags.String("segments", "", "Comma-separated name:size list, e.g. A:40,B:30")
	layoutPath := flags.String("layout", "", "Path to a json layout file")
	seed := flags.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	jsonOut := flags.Bool("json", false, "Print the result as json instead of a table")
	chart := flags.Bool("chart", false, "Draw a bar chart of the layout")
	width := flags.Int("width", report.DefaultChartWidth, "Width of the chart in columns")
	verbose := flags.Bool("v", false, "Enable debug logging")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	config := runConfig{
		memorySize: *memorySize,
		seed:       *seed,
		json:       *jsonOut,
		chart:      *chart,
		width:      *width,
		verbose:    *verbose,
	}

	level := slog.LevelInfo
	if config.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(stderr))

	var err error
	switch {
	case *layoutPath != "":
		err = config.loadLayout(*layoutPath)
	case *segmentList != "":
		config.segments, err = input.ParseSegmentList(*segmentList)
	default:
		err = config.prompt(stdin, stderr)
	}
	if err != nil {
		logger.Error("invalid input", slog.Any("error", err))
		return 1
	}

	if err := simulate(logger, config, stdout); err != nil {
		logger.Error("simulation failed", slog.Any("error", err))
		return 1
	}

	return 0
}

func (c *runConfig) loadLayout(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read layout %s", path)
	}

	layout, err := input.ReadLayout(data)
	if err != nil {
		return errors.Wrapf(err, "layout %s", path)
	}

	c.memorySize = layout.MemorySize
	c.segments = layout.Segments
	if c.seed == 0 {
		c.seed = layout.Seed
	}
	return nil
}

func simulate(logger *slog.Logger, config runConfig, stdout io.Writer) error {
	alloc, err := engine.New(logger, config.memorySize, engine.CreateOptions{Seed: config.seed})
	if err != nil {
		return err
	}

	for _, request := range config.segments {
		if _, err := alloc.AddSegment(request.Name, request.Size); err != nil {
			return err
		}
	}

	result := alloc.Allocate()

	if config.json {
		data, err := report.JSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}

	fmt.Fprintln(stdout, "Memory Segmentation:")
	if err := report.WriteTable(stdout, result.Placements); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	if err := report.WriteSummary(stdout, result); err != nil {
		return err
	}

	if config.chart {
		fmt.Fprintln(stdout)
		return report.WriteChart(stdout, result.MemorySize, result.Placements, config.width)
	}

	return nil
}
