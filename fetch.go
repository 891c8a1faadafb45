// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/xentrace"
)

type fetchCmd struct {
	// User-specified command line arguments.
	bucket, key, region, endpoint, out string
}

func newFetchCmd() *ffcli.Command {
	cmd := fetchCmd{}
	set := flag.NewFlagSet("fetch", flag.ContinueOnError)
	set.StringVar(&cmd.bucket, "bucket", "", bucketHelp)
	set.StringVar(&cmd.endpoint, "endpoint", "", endpointHelp)
	set.StringVar(&cmd.key, "key", "", keyHelp)
	set.StringVar(&cmd.out, "o", "", outputHelp+" Defaults to the base name of the key.")
	set.StringVar(&cmd.region, "region", "", regionHelp)
	return &ffcli.Command{
		Name:       "fetch",
		ShortUsage: "fetch -bucket BUCKET -key KEY [flags]",
		ShortHelp:  "Download a capture from S3 compatible storage",
		FlagSet:    set,
		Exec:       cmd.exec,
	}
}

func (cmd *fetchCmd) exec(ctx context.Context, _ []string) error {
	if cmd.bucket == "" {
		return errors.New("missing required argument `bucket`")
	}
	if cmd.key == "" {
		return errors.New("missing required argument `key`")
	}
	out := cmd.out
	if out == "" {
		out = path.Base(cmd.key)
	}

	client, err := cmd.client(ctx)
	if err != nil {
		return err
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cmd.bucket),
		Key:    aws.String(cmd.key),
	})
	if err != nil {
		return fmt.Errorf("failed to get s3://%s/%s: %w", cmd.bucket, cmd.key, err)
	}
	defer resp.Body.Close()

	if err = writeFile(out, resp.Body); err != nil {
		return err
	}

	if ok, _ := xentrace.IsTraceFile(out); !ok {
		log.Warnf("%s does not look like a xentrace capture", out)
	}
	log.Infof("Fetched s3://%s/%s into %s", cmd.bucket, cmd.key, out)
	return nil
}

func (cmd *fetchCmd) client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cmd.region != "" {
		opts = append(opts, awsconfig.WithRegion(cmd.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cmd.endpoint != "" {
			o.BaseEndpoint = aws.String(cmd.endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// writeFile stores the content of r in the file name, removing partial output on failure.
func writeFile(name string, r io.Reader) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(name)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return f.Close()
}
