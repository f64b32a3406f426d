// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata stamped into the binary at link time:
//
//	go build -ldflags "-X accelerometer/pkg/build.buildName=accelerometer \
//	  -X accelerometer/pkg/build.buildVersion=1.2.0 ..."
//
// Development builds carry the defaults below.
package build

import (
	"errors"
	"fmt"
)

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

const defaultName = "accelerometer"

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    defaultName,
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies the ldflags variables into the build information. Every
// missing flag is reported in the returned error; flags that are present are
// still applied, so callers may treat the error as a warning.
func Initialize() error {
	var errs []error
	apply := func(dst *string, src, flag string) {
		if src == "" {
			errs = append(errs, fmt.Errorf("%s is required", flag))
			return
		}
		*dst = src
	}

	apply(&buildFlags.Name, buildName, "BuildName")
	apply(&buildFlags.Time, buildTime, "BuildTime")
	apply(&buildFlags.Commit, buildCommit, "BuildCommit")
	apply(&buildFlags.Version, buildVersion, "BuildVersion")

	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders the build information on one line, e.g. for the session log.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
