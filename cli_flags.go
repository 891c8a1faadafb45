// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/kshark"
	"github.com/xenviz/xentrace-kshark/times"
)

const (
	// Default values for CLI flags
	defaultArgDumpLimit   = 0
	defaultArgDumpWorkers = 4
	defaultArgStatsTop    = 10
	defaultArgCacheSize   = 1024

	// envVarPrefix is prepended to the upper-cased flag names when looking them up in
	// the environment, so -cpuhz also binds to XENTRACE_CPUHZ.
	envVarPrefix = "XENTRACE"
)

// Help strings for command line arguments
var (
	verboseModeHelp = "Enable verbose logging and debugging capabilities."
	versionHelp     = "Show version."
	cpuHzHelp       = fmt.Sprintf("CPU frequency of the traced host, e.g. 2400M or 2.4G. "+
		"Invalid values fall back to the default of %.0f Hz.", times.DefaultFrequency)
	configHelp    = "Path to a configuration file with one 'flag value' pair per line."
	cacheSizeHelp = "Number of event names cached per stream."

	offsetHelp  = "Index of the first entry to print."
	limitHelp   = "Maximum number of entries to print, 0 prints all of them."
	workersHelp = "Number of goroutines rendering entries."
	topHelp     = "Number of most frequent event names to list."
	outputHelp  = "The output file path."

	bucketHelp   = "The S3 bucket holding the capture."
	keyHelp      = "The object key of the capture."
	regionHelp   = "The region of the bucket. Defaults to the region of the AWS configuration."
	endpointHelp = "A custom S3 compatible endpoint, addressed in path style."
)

// globalArgs holds the flags shared by every subcommand.
type globalArgs struct {
	verboseMode bool
	version     bool
	cpuHz       string
	configFile  string
	cacheSize   uint
}

func (args *globalArgs) flagSet(out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("xentrace-kshark", flag.ContinueOnError)
	fs.SetOutput(out)

	// Please keep the parameters ordered alphabetically in the source-code.
	fs.UintVar(&args.cacheSize, "cache-size", defaultArgCacheSize, cacheSizeHelp)
	fs.StringVar(&args.configFile, "config", "", configHelp)
	fs.StringVar(&args.cpuHz, "cpuhz", "", cpuHzHelp)

	fs.BoolVar(&args.verboseMode, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&args.verboseMode, "verbose", false, verboseModeHelp)
	fs.BoolVar(&args.version, "version", false, versionHelp)

	return fs
}

// ffOptions configures the environment and config file lookup of the root flags.
func ffOptions() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix(envVarPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	}
}

// streamOptions translates the global flags into options for kshark.Open.
func (args *globalArgs) streamOptions() []kshark.Option {
	var opts []kshark.Option
	if args.cpuHz != "" {
		opts = append(opts, kshark.WithCPUFrequency(args.cpuHz))
	}
	if args.cacheSize > 0 {
		opts = append(opts, kshark.WithNameCacheSize(uint32(min(args.cacheSize, 1<<20))))
	}
	return opts
}

func (args *globalArgs) dump() {
	log.Debug("Config:")
	log.Debugf("cache-size: %d", args.cacheSize)
	log.Debugf("config: %q", args.configFile)
	log.Debugf("cpuhz: %q", args.cpuHz)
	log.Debugf("verbose: %v", args.verboseMode)
}
