// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/xenviz/xentrace-kshark/kshark"
)

var errNotTrace = errors.New("not a xentrace capture")

type checkCmd struct {
	out io.Writer
}

func newCheckCmd(out io.Writer) *ffcli.Command {
	cmd := checkCmd{out: out}
	return &ffcli.Command{
		Name:       "check",
		ShortUsage: "check FILE",
		ShortHelp:  "Report whether FILE is a capture the plugin can open",
		FlagSet:    flag.NewFlagSet("check", flag.ContinueOnError),
		Exec:       cmd.exec,
	}
}

func (cmd *checkCmd) exec(_ context.Context, args []string) error {
	path, err := singleFile(args)
	if err != nil {
		return err
	}
	if !kshark.InputCheck(path) {
		return fmt.Errorf("%s: %w", path, errNotTrace)
	}
	fmt.Fprintf(cmd.out, "%s: %s\n", path, kshark.InputFormat)
	return nil
}

// singleFile extracts the FILE argument of a subcommand.
func singleFile(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one FILE argument, got %d", len(args))
	}
	return args[0], nil
}
