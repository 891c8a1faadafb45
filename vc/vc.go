// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package vc provides buildtime information of the xentrace-kshark tool.
package vc // import "github.com/xenviz/xentrace-kshark/vc"

import "fmt"

var (
	// The following variables are going to be set at link time using ldflags
	// and can be referenced later in the program, e.g.
	//   -X github.com/xenviz/xentrace-kshark/vc.version=v0.3.0

	// revision of the source tree
	revision = ""
	// buildTimestamp, timestamp of the build
	buildTimestamp = ""
	// version in vX.Y.Z{-N-abbrev} format (via git-describe --tags)
	version = ""
)

// Revision of the source tree.
func Revision() string {
	return revision
}

// BuildTimestamp returns the timestamp of the build.
func BuildTimestamp() string {
	return buildTimestamp
}

// Version in vX.Y.Z{-N-abbrev} format. Unversioned builds report "devel".
func Version() string {
	if version == "" {
		return "devel"
	}
	return version
}

// String renders the build information on one line.
func String() string {
	s := Version()
	if revision != "" {
		s += fmt.Sprintf(" (%s)", revision)
	}
	if buildTimestamp != "" {
		s += " built " + buildTimestamp
	}
	return s
}
