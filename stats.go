// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/xenviz/xentrace-kshark/kshark"
	"github.com/xenviz/xentrace-kshark/metrics"
)

type statsCmd struct {
	args *globalArgs
	out  io.Writer

	// User-specified command line arguments.
	top int
}

func newStatsCmd(args *globalArgs, out io.Writer) *ffcli.Command {
	cmd := statsCmd{args: args, out: out}
	set := flag.NewFlagSet("stats", flag.ContinueOnError)
	set.IntVar(&cmd.top, "top", defaultArgStatsTop, topHelp)
	return &ffcli.Command{
		Name:       "stats",
		ShortUsage: "stats [flags] FILE",
		ShortHelp:  "Summarize a capture and the decoder counters",
		FlagSet:    set,
		Exec:       cmd.exec,
	}
}

type nameCount struct {
	name  string
	count int
}

func (cmd *statsCmd) exec(_ context.Context, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}

	stream, err := kshark.Open(path, cmd.args.streamOptions()...)
	if err != nil {
		return err
	}

	entries, n := stream.LoadEntries()
	counts := make(map[string]int)
	for i := range entries {
		counts[stream.GetEventName(&entries[i])]++
	}

	fmt.Fprintf(cmd.out, "file:    %s\n", stream.File())
	fmt.Fprintf(cmd.out, "entries: %d\n", n)
	fmt.Fprintf(cmd.out, "cpus:    %d\n", stream.NCPUs())
	fmt.Fprintf(cmd.out, "tasks:   %d\n", len(stream.Tasks()))
	fmt.Fprintf(cmd.out, "events:  %d\n", len(stream.AllEventIDs()))
	fmt.Fprintf(cmd.out, "qhz:     %g\n", stream.Calibration().QHz())

	fmt.Fprintln(cmd.out, "top events:")
	for _, nc := range topNames(counts, cmd.top) {
		fmt.Fprintf(cmd.out, "  %8d %s\n", nc.count, nc.name)
	}

	// Closing the stream flushes its counters into the metrics package.
	stream.Close()
	writeMetrics(cmd.out, metrics.Snapshot())
	return nil
}

// topNames returns the n most frequent names, ties broken by name.
func topNames(counts map[string]int, n int) []nameCount {
	list := make([]nameCount, 0, len(counts))
	for name, count := range counts {
		list = append(list, nameCount{name: name, count: count})
	}
	slices.SortFunc(list, func(a, b nameCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if n >= 0 && n < len(list) {
		list = list[:n]
	}
	return list
}

func writeMetrics(out io.Writer, summary metrics.Summary) {
	fmt.Fprintln(out, "metrics:")
	for _, def := range metrics.GetDefinitions() {
		if def.Obsolete {
			continue
		}
		fmt.Fprintf(out, "  %-40s %d %s\n", def.Name, summary[def.ID], def.Unit)
	}
}
