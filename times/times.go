// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package times converts cycle counter ticks recorded by the hypervisor into
// nanoseconds on the timeline of a single trace.
package times // import "github.com/xenviz/xentrace-kshark/times"

import (
	"math"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xenviz/xentrace-kshark/libpf"
)

const (
	// FrequencyEnv names the environment variable overriding the CPU frequency.
	FrequencyEnv = "XENTRACE_CPUHZ"

	// DefaultFrequency is used when no valid override is configured.
	DefaultFrequency = 2.4e9

	// Ticks are scaled by 1<<fixedPointShift before dividing by the calibration constant.
	fixedPointShift = 10
	fixedPointScale = 1 << fixedPointShift

	nsPerSecond = 1e9
)

var magnitudes = map[byte]float64{
	'G': 1e9,
	'M': 1e6,
	'K': 1e3,
}

// ParseFrequency parses a frequency given as a decimal number with an optional,
// case-sensitive G, M or K suffix. The result is in Hz.
func ParseFrequency(value string) (float64, error) {
	multiplier := 1.0
	if n := len(value); n > 0 {
		if m, ok := magnitudes[value[n-1]]; ok {
			multiplier = m
			value = value[:n-1]
		}
	}

	// ParseFloat also takes hex floats and digit separators, neither is a decimal number.
	digits := strings.TrimLeft(value, "+-")
	if strings.ContainsRune(value, '_') ||
		strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, &strconv.NumError{Func: "ParseFrequency", Num: value, Err: strconv.ErrSyntax}
	}

	base, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	hz := base * multiplier
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return 0, strconv.ErrRange
	}
	return hz, nil
}

// ResolveFrequency returns the frequency described by override, or DefaultFrequency
// when override is empty or invalid. It never fails.
func ResolveFrequency(override string) float64 {
	if override == "" {
		return DefaultFrequency
	}
	hz, err := ParseFrequency(override)
	if err != nil {
		log.Warnf("Ignoring CPU frequency override %q (%v), using %.0f Hz",
			override, err, DefaultFrequency)
		return DefaultFrequency
	}
	return hz
}

// FrequencyFromEnv resolves the frequency from the FrequencyEnv environment variable.
func FrequencyFromEnv() float64 {
	return ResolveFrequency(os.Getenv(FrequencyEnv))
}

// Calibration holds the fixed-point cycles-per-nanosecond constant of one stream.
// It is immutable and safe for concurrent use.
type Calibration struct {
	qhz float64
}

// NewCalibration computes the calibration constant for a CPU running at hz.
// Frequencies that are not finite and positive are replaced by DefaultFrequency.
func NewCalibration(hz float64) Calibration {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		hz = DefaultFrequency
	}
	return Calibration{qhz: hz * fixedPointScale / nsPerSecond}
}

// QHz returns the calibration constant, cycles per nanosecond scaled by 1024.
func (c Calibration) QHz() float64 {
	return c.qhz
}

// TicksToNS converts tick into nanoseconds. With hasOrigin set the result is relative
// to origin and a tick that precedes origin yields a negative value. Without an origin
// the raw tick value is divided by the constant unscaled. Out of range results saturate.
func (c Calibration) TicksToNS(tick, origin uint64, hasOrigin bool) int64 {
	if !hasOrigin {
		return libpf.SaturateFloat(float64(tick) / c.qhz)
	}

	var delta float64
	if tick >= origin {
		delta = float64(tick - origin)
	} else {
		delta = -float64(origin - tick)
	}
	return libpf.SaturateFloat(delta * fixedPointScale / c.qhz)
}
