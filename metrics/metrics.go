// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metrics // import "github.com/xenviz/xentrace-kshark/metrics"

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenviz/xentrace-kshark/vc"
)

var (
	//go:embed metrics.json
	metricsJSON []byte

	// definitions indexed by MetricID, nil for unused or obsolete ids
	definitions [IDMax]*MetricDefinition

	// totals accumulates every value added since process start or the last Reset
	totals [IDMax]atomic.Int64

	// OTel metric instrumentation
	meter = otel.Meter("github.com/xenviz/xentrace-kshark",
		metric.WithInstrumentationVersion(vc.Version()))
	counters = map[MetricID]metric.Int64Counter{}
)

func init() {
	for _, md := range GetDefinitions() {
		if md.Obsolete {
			continue
		}
		if md.ID <= IDInvalid || md.ID >= IDMax {
			panic(fmt.Sprintf("metric %s has id %d out of range", md.Name, md.ID))
		}
		definitions[md.ID] = &md

		switch typ := md.Type; typ {
		case MetricTypeCounter:
			counter, err := meter.Int64Counter(md.Field,
				metric.WithDescription(md.Description),
				metric.WithUnit(md.Unit))
			if err != nil {
				log.Errorf("Creating Int64Counter: %v", err)
				continue
			}
			counters[md.ID] = counter
		default:
			panic(fmt.Sprintf("Unknown metric type: %v", typ))
		}
	}
}

// AddSlice takes a slice of metrics from a metric provider. Values are added to
// the counters immediately, zero values are skipped.
func AddSlice(newMetrics []Metric) {
	ctx := context.Background()
	for _, m := range newMetrics {
		if m.ID <= IDInvalid || m.ID >= IDMax || definitions[m.ID] == nil {
			log.Errorf("Metric id %d out of range [%d,%d] - needs investigation",
				m.ID, IDInvalid+1, IDMax-1)
			continue
		}
		if m.Value == 0 {
			continue
		}

		totals[m.ID].Add(int64(m.Value))
		if counter, ok := counters[m.ID]; ok {
			counter.Add(ctx, int64(m.Value))
		}
	}
}

// Add takes a single metric (id and value) from a metric provider.
func Add(id MetricID, value MetricValue) {
	AddSlice([]Metric{{id, value}})
}

// Snapshot returns the accumulated value of every metric that was added to.
func Snapshot() Summary {
	summary := Summary{}
	for id := range totals {
		if v := totals[id].Load(); v != 0 {
			summary[MetricID(id)] = MetricValue(v)
		}
	}
	return summary
}

// Reset clears the accumulated values returned by Snapshot.
func Reset() {
	for id := range totals {
		totals[id].Store(0)
	}
}

// Definition returns the definition of id.
func Definition(id MetricID) (MetricDefinition, bool) {
	if id >= IDMax || definitions[id] == nil {
		return MetricDefinition{}, false
	}
	return *definitions[id], true
}

// GetDefinitions returns the metric definitions from the embedded metrics.json file.
func GetDefinitions() []MetricDefinition {
	var defs []MetricDefinition

	dec := json.NewDecoder(bytes.NewReader(metricsJSON))
	dec.DisallowUnknownFields()

	err := dec.Decode(&defs)
	if err != nil {
		panic(fmt.Sprintf("extracting definitions from metrics.json: %v", err))
	}
	return defs
}
