// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenviz/xentrace-kshark/kshark"
	"github.com/xenviz/xentrace-kshark/testsupport"
	"github.com/xenviz/xentrace-kshark/vc"
	"github.com/xenviz/xentrace-kshark/xentrace"
)

const codeIORead = 0x00082006

func capture() *testsupport.TraceBuilder {
	return testsupport.NewTraceBuilder(0).
		Event(xentrace.CodeSchedSwitch, 2400, xentrace.DomainIDIdle, 0, 3, 1).
		Event(codeIORead, 4800, 0xAB, 0xCD).
		CPUChange(1).
		Event(xentrace.CodeContinueRunning, 3600, xentrace.DomainIDIdle<<16|2).
		EventNoCycles(0x0FFF0001)
}

var captureDump = []string{
	"0 cpu=0 pid=1 default/v? unknown (0x0001F003) 0x00000000, 0x00000000",
	"0 cpu=1 pid=1 default/v? unknown (0x0001F003) 0x00000001, 0x00000000",
	"1000 cpu=0 pid=4 d3/v1 __enter_scheduler 0x00007FFF, 0x00000000, 0x00000003, 0x00000001",
	"1500 cpu=1 pid=0 idle/v2 continue_running 0x7FFF0002",
	"1500 cpu=1 pid=0 idle/v2 unknown (0x0FFF0001)",
	"2000 cpu=0 pid=4 d3/v1 IO_READ 0x000000AB, 0x000000CD",
}

func run(t *testing.T, args ...string) (exitCode, string) {
	t.Helper()
	var out bytes.Buffer
	code := mainWithExitCode(context.Background(), args, &out)
	return code, out.String()
}

func TestMainWithExitCode(t *testing.T) {
	trace := capture().WriteFile(t, "trace.bin")
	other := new(testsupport.TraceBuilder).Raw(0x464C457F).WriteFile(t, "elf")

	tests := map[string]struct {
		args     []string
		code     exitCode
		contains string
	}{
		"version":          {args: []string{"-version"}, code: exitSuccess, contains: vc.String()},
		"no subcommand":    {args: nil, code: exitSuccess},
		"help":             {args: []string{"-h"}, code: exitSuccess},
		"unknown flag":     {args: []string{"-nope"}, code: exitParseError},
		"check capture":    {args: []string{"check", trace}, code: exitSuccess, contains: kshark.InputFormat},
		"check other file": {args: []string{"check", other}, code: exitFailure},
		"check no file":    {args: []string{"check"}, code: exitFailure},
		"dump missing":     {args: []string{"dump", filepath.Join(t.TempDir(), "missing")}, code: exitFailure},
		"dump bad window":  {args: []string{"dump", "-offset", "-1", trace}, code: exitFailure},
		"fetch no bucket":  {args: []string{"fetch", "-key", "k"}, code: exitFailure},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			code, out := run(t, tc.args...)
			assert.Equal(t, tc.code, code)
			assert.Contains(t, out, tc.contains)
		})
	}
}

func TestDump(t *testing.T) {
	trace := capture().WriteFile(t, "trace.bin")

	tests := map[string]struct {
		args     []string
		expected []string
	}{
		"all":          {args: nil, expected: captureDump},
		"offset":       {args: []string{"-offset", "4"}, expected: captureDump[4:]},
		"limit":        {args: []string{"-offset", "1", "-limit", "2"}, expected: captureDump[1:3]},
		"past the end": {args: []string{"-offset", "6"}, expected: nil},
		"one worker":   {args: []string{"-workers", "1"}, expected: captureDump},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"-cpuhz", "2400M", "dump"}, tc.args...)
			code, out := run(t, append(args, trace)...)
			require.Equal(t, exitSuccess, code)

			var expected string
			if len(tc.expected) > 0 {
				expected = strings.Join(tc.expected, "\n") + "\n"
			}
			assert.Equal(t, expected, out)
		})
	}
}

func TestDumpCompressed(t *testing.T) {
	trace := capture().WriteCompressedFile(t, "trace.bin.zst")
	code, out := run(t, "-cpuhz", "2400M", "dump", trace)
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, strings.Join(captureDump, "\n")+"\n", out)
}

func TestRenderEntriesOrder(t *testing.T) {
	b := testsupport.NewTraceBuilder(0)
	for i := range 3 * minChunkSize {
		b.Event(codeIORead, uint64(i+1)*100, uint32(i))
	}
	stream, err := kshark.Open(b.WriteFile(t, "trace.bin"))
	require.NoError(t, err)
	defer stream.Close()
	entries, _ := stream.LoadEntries()

	var sequential strings.Builder
	for i := range entries {
		formatEntry(&sequential, stream, &entries[i])
	}

	for _, workers := range []int{0, 1, 3, 16} {
		chunks, err := renderEntries(context.Background(), stream, entries, workers)
		require.NoError(t, err)
		assert.Equal(t, sequential.String(), strings.Join(chunks, ""))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = renderEntries(ctx, stream, entries, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEntryWindow(t *testing.T) {
	entries := make([]kshark.Entry, 5)
	for i := range entries {
		entries[i].Offset = int64(i)
	}

	tests := map[string]struct {
		offset, limit int
		expected      []int64
	}{
		"everything":   {offset: 0, limit: 0, expected: []int64{0, 1, 2, 3, 4}},
		"offset":       {offset: 3, limit: 0, expected: []int64{3, 4}},
		"limit":        {offset: 1, limit: 2, expected: []int64{1, 2}},
		"large limit":  {offset: 2, limit: 10, expected: []int64{2, 3, 4}},
		"past the end": {offset: 5, limit: 1, expected: nil},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var offsets []int64
			for _, e := range entryWindow(entries, tc.offset, tc.limit) {
				offsets = append(offsets, e.Offset)
			}
			assert.Equal(t, tc.expected, offsets)
		})
	}
}

func TestStats(t *testing.T) {
	trace := capture().WriteFile(t, "trace.bin")
	code, out := run(t, "stats", "-top", "2", trace)
	require.Equal(t, exitSuccess, code)

	for _, line := range []string{
		"entries: 6\n",
		"cpus:    2\n",
		"tasks:   2\n",
		"events:  5\n",
		"       2 unknown (0x0001F003)\n",
		"       1 IO_READ\n",
		"metrics:\n",
		"StreamsOpened",
		"BridgeDecodeCalls",
	} {
		assert.Contains(t, out, line)
	}
	assert.NotContains(t, out, "continue_running")
}

func TestTopNames(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}
	assert.Equal(t, []nameCount{{"c", 5}, {"a", 2}, {"b", 2}}, topNames(counts, 3))
	assert.Len(t, topNames(counts, 10), 4)
	assert.Empty(t, topNames(counts, 0))
}

func TestCompress(t *testing.T) {
	in := capture().WriteFile(t, "trace.bin")
	out := filepath.Join(t.TempDir(), "trace.zst")

	code, _ := run(t, "compress", "-o", out, in)
	require.Equal(t, exitSuccess, code)

	plain, err := xentrace.Open(in)
	require.NoError(t, err)
	compressed, err := xentrace.Open(out)
	require.NoError(t, err)
	assert.Equal(t, plain.Records(), compressed.Records())

	code, _ = run(t, "compress", in)
	require.Equal(t, exitSuccess, code)
	assert.True(t, kshark.InputCheck(in+".zst"))

	other := new(testsupport.TraceBuilder).Raw(0x464C457F).WriteFile(t, "elf")
	code, _ = run(t, "compress", other)
	assert.Equal(t, exitFailure, code)
}

func TestFetch(t *testing.T) {
	body := capture().Bytes()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/captures/xen/trace.bin" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	out := filepath.Join(dir, "fetched.bin")
	code, _ := run(t, "fetch", "-bucket", "captures", "-key", "xen/trace.bin",
		"-region", "us-east-1", "-endpoint", srv.URL, "-o", out)
	require.Equal(t, exitSuccess, code)
	assert.True(t, kshark.InputCheck(out))

	code, _ = run(t, "fetch", "-bucket", "captures", "-key", "xen/missing.bin",
		"-region", "us-east-1", "-endpoint", srv.URL, "-o", filepath.Join(dir, "missing"))
	assert.Equal(t, exitFailure, code)
}
