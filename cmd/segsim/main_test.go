package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runWith(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, io.NopCloser(strings.NewReader(stdin)), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSegmentList(t *testing.T) {
	code, stdout, _ := runWith(t, "", "-memory", "100", "-segments", "A:40,B:30,C:40", "-seed", "7")
	require.Equal(t, 0, code)

	require.True(t, strings.HasPrefix(stdout, "Memory Segmentation:\n"))
	require.Contains(t, stdout, "Segment")
	require.Contains(t, stdout, "Allocated 2 of 3 segments, 70 of 100 addresses in use (70.0%)")
	require.Contains(t, stdout, "Error: cannot allocate segment 'C' (size 40): no room even after compaction")
	require.NotContains(t, stdout, "|")
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	args := []string{"-memory", "200", "-segments", "A:13,B:7,C:21,D:9,E:30", "-seed", "99"}

	code, first, _ := runWith(t, "", args...)
	require.Equal(t, 0, code)
	code, second, _ := runWith(t, "", args...)
	require.Equal(t, 0, code)

	require.Equal(t, first, second)
}

func TestRunJSON(t *testing.T) {
	code, stdout, _ := runWith(t, "", "-memory", "50", "-segments", "A:50", "-seed", "1", "-json")
	require.Equal(t, 0, code)

	require.JSONEq(t, `{
		"MemorySize": 50,
		"Statistics": {
			"Segments": 1,
			"Allocations": 1,
			"TotalBytes": 50,
			"AllocatedBytes": 50,
			"UnusedBytes": 0,
			"UnusedRanges": 0,
			"AllocationSizeMin": 50,
			"AllocationSizeMax": 50
		},
		"Compaction": {
			"Passes": 0,
			"SegmentsMoved": 0,
			"BytesMoved": 0,
			"SegmentsEvicted": 0,
			"BytesEvicted": 0
		},
		"Segments": [
			{"Name": "A", "Size": 50, "Base": 0, "End": 50, "Status": "Random", "Attempts": 1}
		],
		"Failures": []
	}`, stdout)
}

func TestRunChart(t *testing.T) {
	code, stdout, _ := runWith(t, "", "-memory", "50", "-segments", "A:50", "-seed", "1", "-chart", "-width", "10")
	require.Equal(t, 0, code)

	require.Contains(t, stdout, "A |##########| [0, 50)\n")
}

func TestRunLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"memory_size": 10,
		"seed": 3,
		"segments": [{"name": "A", "size": 20}]
	}`), 0o600))

	code, stdout, _ := runWith(t, "", "-layout", path)
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Error: cannot allocate segment 'A' (size 20): segment is larger than memory")
}

func TestRunInteractive(t *testing.T) {
	code, stdout, stderr := runWith(t, "100\n2\ncode\ncode 40\nstack 30\n", "-seed", "5")
	require.Equal(t, 0, code)

	require.Contains(t, stdout, "Allocated 2 of 2 segments, 70 of 100 addresses in use (70.0%)")
	require.Contains(t, stderr, "malformed segment description")
}

func TestRunInteractiveAborted(t *testing.T) {
	code, _, stderr := runWith(t, "100\n3\nA 10\n", "-seed", "5")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "input aborted")
}

func TestRunInvalidInput(t *testing.T) {
	testCases := map[string][]string{
		"BadSegmentList":  {"-memory", "100", "-segments", "A:forty"},
		"MissingMemory":   {"-segments", "A:10"},
		"NegativeMemory":  {"-memory", "-5", "-segments", "A:10"},
		"MissingLayout":   {"-layout", filepath.Join(os.TempDir(), "segsim-does-not-exist.json")},
		"ZeroSizeSegment": {"-memory", "100", "-segments", "A:0"},
	}

	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			code, stdout, stderr := runWith(t, "", args...)
			require.Equal(t, 1, code)
			require.Empty(t, stdout)
			require.Contains(t, stderr, "level=ERROR")
		})
	}
}

func TestRunFlags(t *testing.T) {
	code, _, stderr := runWith(t, "", "-h")
	require.Equal(t, 0, code)
	require.Contains(t, stderr, "Usage: segsim [options]")

	code, _, _ = runWith(t, "", "-unknown")
	require.Equal(t, 2, code)
}

func TestRunInteractiveRejectsHugeCount(t *testing.T) {
	code, _, stderr := runWith(t, "100\n9000000000000000000\n", "-seed", "5")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "number of segments must be at most")
	require.Contains(t, stderr, "input aborted")
}

func TestParseCount(t *testing.T) {
	testCases := map[string]struct {
		Text     string
		Expected int
		Err      bool
	}{
		"Simple":      {Text: " 3 ", Expected: 3},
		"Zero":        {Text: "0", Expected: 0},
		"AtLimit":     {Text: "10000", Expected: maxPromptSegments},
		"Negative":    {Text: "-1", Err: true},
		"NotANumber":  {Text: "three", Err: true},
		"OverLimit":   {Text: "10001", Err: true},
		"OutOfRange":  {Text: "9000000000000000000", Err: true},
		"IntOverflow": {Text: "99999999999999999999999", Err: true},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			count, err := parseCount(testCase.Text)
			if testCase.Err {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.Expected, count)
		})
	}
}
