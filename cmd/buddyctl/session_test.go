package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/allocator"
	"github.com/vkngwrapper/buddy/memutils/metadata"
	"golang.org/x/exp/slog"
)

func testSession(t *testing.T, size int, configure func(config *sessionConfig)) (*session, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	config := sessionConfig{
		size:     size,
		strategy: metadata.AllocationStrategyMinOffset,
		noColor:  true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if configure != nil {
		configure(&config)
	}

	s, err := newSession(&out, config)
	require.NoError(t, err)
	return s, &out
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "1024", want: 1024},
		{input: "64k", want: 64 << 10},
		{input: "2M", want: 2 << 20},
		{input: "1g", want: 1 << 30},
		{input: " 16 ", want: 16},
		{input: "-4", want: -4},
		{input: "abc", wantErr: true},
		{input: "k", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, errUsage))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSessionInvalidSize(t *testing.T) {
	_, err := newSession(io.Discard, sessionConfig{size: 1000, noColor: true})
	require.True(t, errors.Is(err, allocator.InvalidSizeError))
}

func TestSessionAllocFreeTree(t *testing.T) {
	s, out := testSession(t, 64, nil)

	require.NoError(t, s.exec("alloc 16 P1"))
	require.Equal(t, "Allocated 16B block at address 0 (requested 16B)\n", out.String())

	out.Reset()
	require.NoError(t, s.exec("tree"))
	require.Equal(t, strings.Join([]string{
		"[0, 64) 64B SPLIT",
		"├── [0, 32) 32B SPLIT",
		"│   ├── [0, 16) 16B ALLOCATED requested 16B P1",
		"│   └── [16, 32) 16B FREE",
		"└── [32, 64) 32B FREE",
		"",
	}, "\n"), out.String())

	out.Reset()
	require.NoError(t, s.exec("list"))
	require.Contains(t, out.String(), "0 -> 16B P1")

	out.Reset()
	require.NoError(t, s.exec("free P1"))
	require.Equal(t, "Freed 16B block at address 0\n", out.String())

	out.Reset()
	require.NoError(t, s.exec("tree"))
	require.Equal(t, "[0, 64) 64B FREE\n", out.String())

	out.Reset()
	require.NoError(t, s.exec("list"))
	require.Equal(t, "No allocations.\n", out.String())
}

func TestSessionErrors(t *testing.T) {
	s, _ := testSession(t, 64, nil)

	tests := []struct {
		op        string
		wantErr   error
		allocator bool
	}{
		{op: "alloc 0", wantErr: allocator.InvalidRequestError, allocator: true},
		{op: "alloc 65", wantErr: allocator.OutOfRangeError, allocator: true},
		{op: "free 0", wantErr: allocator.NotAllocatedError, allocator: true},
		{op: "free nobody", wantErr: allocator.NotAllocatedError, allocator: true},
		{op: "resize 100", wantErr: allocator.InvalidSizeError, allocator: true},
		{op: "alloc", wantErr: errUsage},
		{op: "alloc x", wantErr: errUsage},
		{op: "free", wantErr: errUsage},
		{op: "explode", wantErr: errUsage},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			err := s.exec(tt.op)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.wantErr), err.Error())
			require.Equal(t, tt.allocator, isAllocatorError(err))
		})
	}

	require.NoError(t, s.exec("alloc 64"))
	err := s.exec("alloc 1")
	require.True(t, errors.Is(err, allocator.NoSpaceAvailableError))

	require.True(t, errors.Is(s.exec("quit"), errQuit))
	require.NoError(t, s.exec("   "))
}

func TestSessionResetAndResize(t *testing.T) {
	s, out := testSession(t, 64, nil)

	require.NoError(t, s.exec("alloc 10"))
	require.NoError(t, s.exec("alloc 10"))

	out.Reset()
	require.NoError(t, s.exec("reset"))
	require.Equal(t, "Reset: dropped 2 allocations\n", out.String())
	require.True(t, s.alloc.IsEmpty())

	out.Reset()
	require.NoError(t, s.exec("resize 4k"))
	require.Equal(t, "Restarted with 4096B\n", out.String())
	require.Equal(t, 4096, s.alloc.Size())

	require.NoError(t, s.exec("validate"))
}

func TestSessionStats(t *testing.T) {
	s, out := testSession(t, 1024, nil)

	require.NoError(t, s.exec("alloc 50"))
	require.NoError(t, s.exec("alloc 12"))

	out.Reset()
	require.NoError(t, s.exec("stats"))
	require.Contains(t, out.String(), "allocated bytes:        80 (62 requested)")
	require.Contains(t, out.String(), "internal fragmentation: 18B")
	require.Contains(t, out.String(), "largest free block:     512B")
}

func TestSessionJSON(t *testing.T) {
	s, out := testSession(t, 256, func(config *sessionConfig) {
		config.jsonOut = true
	})

	require.NoError(t, s.exec("alloc 100 cache"))
	var allocated struct {
		Offset        int
		Size          int
		RequestedSize int
		Label         string
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &allocated))
	require.Equal(t, 0, allocated.Offset)
	require.Equal(t, 128, allocated.Size)
	require.Equal(t, 100, allocated.RequestedSize)
	require.Equal(t, "cache", allocated.Label)

	out.Reset()
	require.NoError(t, s.exec("list"))
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, "cache", listed[0]["Label"])

	out.Reset()
	require.NoError(t, s.exec("map"))
	var detailed map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &detailed))
	require.Equal(t, "min-offset", detailed["Strategy"])

	out.Reset()
	require.NoError(t, s.exec("tree"))
	var tree map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &tree))
	require.Equal(t, "SPLIT", tree["Type"])

	out.Reset()
	require.NoError(t, s.exec("free 0"))
	require.JSONEq(t, `{"Freed":0}`, out.String())

	out.Reset()
	require.NoError(t, s.exec("validate"))
	require.JSONEq(t, `{"Valid":true}`, out.String())
}

func TestSessionVerboseNarratesEvents(t *testing.T) {
	s, out := testSession(t, 64, func(config *sessionConfig) {
		config.verbose = true
	})

	require.NoError(t, s.exec("alloc 20"))
	require.NoError(t, s.exec("free 0"))

	require.Equal(t, strings.Join([]string{
		"  split [0, 64) into [0, 32) and [32, 64)",
		"  allocated [0, 32) for a request of 20B",
		"Allocated 32B block at address 0 (requested 20B)",
		"  freed [0, 32)",
		"  merged [0, 32) and [32, 64) into [0, 64)",
		"Freed 32B block at address 0",
		"",
	}, "\n"), out.String())
}

func TestRunOpsContinuesAfterRefusals(t *testing.T) {
	s, out := testSession(t, 64, nil)

	err := runOps(s, []string{"alloc 64", "alloc 1", "free 0", "quit", "alloc 1"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Error: ")
	require.True(t, s.alloc.IsEmpty())

	err = runOps(s, []string{"alloc 1", "bogus", "alloc 1"})
	require.True(t, errors.Is(err, errUsage))
	require.Len(t, s.alloc.ListAllocations(), 1)
}

func TestRunShell(t *testing.T) {
	s, out := testSession(t, 128, nil)

	in := strings.NewReader("alloc 8\nfree 99\nhelp\nquit\nalloc 8\n")
	require.NoError(t, runShell(s, in, false))

	output := out.String()
	require.Contains(t, output, "Allocated 8B block at address 0")
	require.Contains(t, output, "Error: ")
	require.Contains(t, output, "resize <size>")
	require.Len(t, s.alloc.ListAllocations(), 1)
}

func TestRunDemo(t *testing.T) {
	s, out := testSession(t, 1024, nil)

	require.NoError(t, runDemo(s))

	output := out.String()
	require.Contains(t, output, "Allocated 8B block at address 0 (requested 8B)")
	require.Contains(t, output, "Allocated 16B block at address 16 (requested 12B)")
	require.Contains(t, output, "Allocated 8B block at address 8 (requested 7B)")
	require.Contains(t, output, "Freed 16B block at address 16")
	require.True(t, strings.HasSuffix(output[:strings.LastIndex(output, "$ stats")], "[0, 1024) 1024B FREE\n\n"))
	require.True(t, s.alloc.IsEmpty())
}
