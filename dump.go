// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xenviz/xentrace-kshark/kshark"
)

// minChunkSize is the smallest number of entries a single worker renders.
const minChunkSize = 256

type dumpCmd struct {
	args *globalArgs
	out  io.Writer

	// User-specified command line arguments.
	offset, limit, workers int
}

func newDumpCmd(args *globalArgs, out io.Writer) *ffcli.Command {
	cmd := dumpCmd{args: args, out: out}
	set := flag.NewFlagSet("dump", flag.ContinueOnError)
	set.IntVar(&cmd.offset, "offset", 0, offsetHelp)
	set.IntVar(&cmd.limit, "limit", defaultArgDumpLimit, limitHelp)
	set.IntVar(&cmd.workers, "workers", defaultArgDumpWorkers, workersHelp)
	return &ffcli.Command{
		Name:       "dump",
		ShortUsage: "dump [flags] FILE",
		ShortHelp:  "Print one line per entry: timestamp, CPU, task id, task, event and info",
		FlagSet:    set,
		Exec:       cmd.exec,
	}
}

func (cmd *dumpCmd) exec(ctx context.Context, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}
	if cmd.offset < 0 || cmd.limit < 0 {
		return fmt.Errorf("invalid window: offset %d, limit %d", cmd.offset, cmd.limit)
	}

	streams := kshark.NewContext()
	defer streams.Close()

	stream, err := streams.Open(path, cmd.args.streamOptions()...)
	if err != nil {
		return err
	}
	entries, n := stream.LoadEntries()
	log.Debugf("Loaded %d entries from %s", n, path)

	window := entryWindow(entries, cmd.offset, cmd.limit)
	chunks, err := renderEntries(ctx, stream, window, cmd.workers)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if _, err := io.WriteString(cmd.out, chunk); err != nil {
			return err
		}
	}
	return nil
}

// entryWindow returns the entries selected by offset and limit. A limit of 0 selects
// everything after offset.
func entryWindow(entries []kshark.Entry, offset, limit int) []kshark.Entry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

// renderEntries formats entries through the decode bridge of stream. Contiguous
// chunks are rendered concurrently and returned in entry order.
func renderEntries(ctx context.Context, stream *kshark.DataStream,
	entries []kshark.Entry, workers int) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	workers = max(workers, 1)
	chunkSize := max((len(entries)+workers-1)/workers, minChunkSize)
	nChunks := (len(entries) + chunkSize - 1) / chunkSize

	chunks := make([]string, nChunks)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range nChunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(entries))
		g.Go(func() error {
			var sb strings.Builder
			for j := start; j < end; j++ {
				if j%minChunkSize == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				formatEntry(&sb, stream, &entries[j])
			}
			chunks[i] = sb.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func formatEntry(sb *strings.Builder, stream *kshark.DataStream, e *kshark.Entry) {
	fmt.Fprintf(sb, "%d cpu=%d pid=%d %s %s", e.TS, e.CPU, e.PID,
		stream.GetTask(e), stream.GetEventName(e))
	if info := stream.GetInfo(e); info != "" {
		sb.WriteString(" ")
		sb.WriteString(info)
	}
	sb.WriteString("\n")
}
