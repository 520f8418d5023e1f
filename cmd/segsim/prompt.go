package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/segsim/input"
)

var errAborted = errors.New("input aborted")

// maxPromptSegments bounds the segment count accepted at the interactive prompt
const maxPromptSegments = 10000

// prompt collects the memory size and the segment list from the terminal. Invalid entries are
// reported and asked for again.
func (c *runConfig) prompt(stdin io.ReadCloser, stderr io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Memory size: ",
		Stdin:           stdin,
		Stderr:          stderr,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.Wrap(err, "could not open terminal")
	}
	defer rl.Close()

	if c.memorySize <= 0 {
		c.memorySize, err = promptValue(rl, stderr, "Memory size: ", input.ParseMemorySize)
		if err != nil {
			return err
		}
	}

	count, err := promptValue(rl, stderr, "Number of segments: ", parseCount)
	if err != nil {
		return err
	}

	c.segments = nil
	for i := 0; i < count; i++ {
		request, err := promptValue(rl, stderr, fmt.Sprintf("Segment %d info: ", i+1), input.ParseSegment)
		if err != nil {
			return err
		}
		c.segments = append(c.segments, request)
	}

	return nil
}

func promptValue[T any](rl *readline.Instance, stderr io.Writer, prompt string, parse func(string) (T, error)) (T, error) {
	rl.SetPrompt(prompt)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			var zero T
			return zero, errAborted
		} else if err != nil {
			var zero T
			return zero, errors.Wrap(err, "could not read input")
		}

		value, err := parse(line)
		if err == nil {
			return value, nil
		}
		fmt.Fprintf(stderr, "  %v\n", err)
	}
}

func parseCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 0 {
		return 0, errors.Newf("number of segments must be a non-negative integer, got %q", text)
	}
	if count > maxPromptSegments {
		return 0, errors.Newf("number of segments must be at most %d, got %d", maxPromptSegments, count)
	}
	return count, nil
}
