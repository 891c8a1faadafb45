// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/xentrace"
)

type compressCmd struct {
	// User-specified command line arguments.
	out string
}

func newCompressCmd() *ffcli.Command {
	cmd := compressCmd{}
	set := flag.NewFlagSet("compress", flag.ContinueOnError)
	set.StringVar(&cmd.out, "o", "", outputHelp+" Defaults to FILE.zst.")
	return &ffcli.Command{
		Name:       "compress",
		ShortUsage: "compress [flags] FILE",
		ShortHelp:  "Compress a capture with zstd; compressed captures open transparently",
		FlagSet:    set,
		Exec:       cmd.exec,
	}
}

func (cmd *compressCmd) exec(_ context.Context, args []string) error {
	in, err := singleFile(args)
	if err != nil {
		return err
	}
	out := cmd.out
	if out == "" {
		out = in + ".zst"
	}

	ok, err := xentrace.IsTraceFile(in)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", in, errNotTrace)
	}

	written, err := compressFile(in, out)
	if err != nil {
		return err
	}
	log.Infof("Compressed %s into %s (%d bytes)", in, out, written)
	return nil
}

func compressFile(in, out string) (int64, error) {
	inputFile, err := os.Open(in)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer inputFile.Close()

	outputFile, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	enc, err := zstd.NewWriter(outputFile, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err = io.Copy(enc, inputFile); err != nil {
		enc.Close()
		return 0, fmt.Errorf("failed to compress file: %w", err)
	}
	if err = enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to compress file: %w", err)
	}

	info, err := outputFile.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), outputFile.Close()
}
