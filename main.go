// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// xentrace-kshark inspects Xen hypervisor trace captures through the same
// decode path the KernelShark input plugin uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/xenviz/xentrace-kshark/vc"
)

type exitCode int

const (
	exitSuccess exitCode = 0
	exitFailure exitCode = 1

	// Go 'flag' package calls os.Exit(2) on flag parse errors, if ExitOnError is set
	exitParseError exitCode = 2
)

func main() {
	log.SetReportCaller(false)
	log.SetFormatter(&log.TextFormatter{})

	ctx, cancel := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer cancel()

	os.Exit(int(mainWithExitCode(ctx, os.Args[1:], os.Stdout)))
}

// newRootCmd assembles the command tree. Subcommands write their results to out.
func newRootCmd(args *globalArgs, out io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "xentrace-kshark",
		ShortUsage: "xentrace-kshark [flags] <subcommand> [flags] FILE",
		ShortHelp:  "Tool for inspecting xentrace captures",
		FlagSet:    args.flagSet(os.Stderr),
		Options:    ffOptions(),
		Subcommands: []*ffcli.Command{
			newCheckCmd(out),
			newDumpCmd(args, out),
			newStatsCmd(args, out),
			newCompressCmd(),
			newFetchCmd(),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}
}

func mainWithExitCode(ctx context.Context, argv []string, out io.Writer) exitCode {
	var args globalArgs
	root := newRootCmd(&args, out)

	if err := root.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return parseError("Failure to parse arguments: %v", err)
	}

	if args.version {
		fmt.Fprintln(out, vc.String())
		return exitSuccess
	}

	if args.verboseMode {
		log.SetLevel(log.DebugLevel)
		// Dump the arguments in debug mode.
		args.dump()
	}

	if err := root.Run(ctx); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(root))
			return exitSuccess
		}
		return failure("%v", err)
	}
	return exitSuccess
}

func parseError(msg string, args ...interface{}) exitCode {
	log.Errorf(msg, args...)
	return exitParseError
}

func failure(msg string, args ...interface{}) exitCode {
	log.Errorf(msg, args...)
	return exitFailure
}
