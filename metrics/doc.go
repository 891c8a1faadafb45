// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package metrics counts what the decode engine does.

Every metric is declared in metrics.json, from which ids.go is generated. Values are
forwarded to the OpenTelemetry meter of the process and also accumulated in process,
so that a command line tool can print them without an exporter:

	metrics.Add(metrics.IDEntriesProjected, metrics.MetricValue(n))
	for id, v := range metrics.Snapshot() { ... }

# Directory Structure

	metrics
	├── genids/         // generator for ids.go
	├── doc.go          // this file
	├── ids.go          // generated metric ids
	├── metrics.go      // Add(), AddSlice() and Snapshot()
	├── metrics.json    // metric definitions
	├── metrics_test.go // tests the metrics package
	└── types.go        // Metric, MetricID, MetricValue and MetricDefinition
*/
package metrics // import "github.com/xenviz/xentrace-kshark/metrics"
