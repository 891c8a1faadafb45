// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// successfailurecounter reports the outcome of an operation, such as opening a stream,
// to exactly one of two metrics.
//
// This package is **not** thread safe. A SuccessFailureCounter belongs to the goroutine
// running the operation it reports on.
package successfailurecounter // import "github.com/xenviz/xentrace-kshark/successfailurecounter"

import (
	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/metrics"
)

// SuccessFailureCounter increments a success or a failure metric exactly once.
type SuccessFailureCounter struct {
	success, fail metrics.MetricID
	sealed        bool
}

// New returns a SuccessFailureCounter that can be incremented exactly once.
func New(success, fail metrics.MetricID) SuccessFailureCounter {
	return SuccessFailureCounter{success: success, fail: fail}
}

// ReportSuccess increments the success metric or logs an error otherwise.
func (sfc *SuccessFailureCounter) ReportSuccess() {
	if sfc.sealed {
		log.Errorf("Attempted to report success/failure status more than once.")
		return
	}
	metrics.Add(sfc.success, 1)
	sfc.sealed = true
}

// ReportFailure increments the failure metric or logs an error otherwise.
func (sfc *SuccessFailureCounter) ReportFailure() {
	if sfc.sealed {
		log.Errorf("Attempted to report failure/success status more than once.")
		return
	}
	metrics.Add(sfc.fail, 1)
	sfc.sealed = true
}

// DefaultToSuccess increments the success metric if nothing was reported before.
func (sfc *SuccessFailureCounter) DefaultToSuccess() {
	if !sfc.sealed {
		metrics.Add(sfc.success, 1)
		sfc.sealed = true
	}
}

// DefaultToFailure increments the failure metric if nothing was reported before.
func (sfc *SuccessFailureCounter) DefaultToFailure() {
	if !sfc.sealed {
		metrics.Add(sfc.fail, 1)
		sfc.sealed = true
	}
}
