// SPDX-License-Identifier: MIT
//
// Package build carries the name, version, commit and build time embedded in
// the binary. Release builds set them with linker flags:
//
//	go build -ldflags "-X rtlpower/pkg/build.buildName=rtlpower \
//	  -X rtlpower/pkg/build.buildVersion=v0.3.0 ..."
//
// Development builds leave them empty and fall back to the module and VCS
// information the Go toolchain records.
package build

import (
	"fmt"
	"runtime/debug"
)

const (
	defaultName        = "rtlpower"
	defaultDescription = "Integrate the power spectrum of a raw 8-bit I/Q stream"
	unknown            = "unknown"
)

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats Info for --version output.
func (i *Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}

// Set by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var buildInfo = defaultInfo()

func defaultInfo() *Info {
	return &Info{
		Name:        defaultName,
		Description: defaultDescription,
		Time:        unknown,
		Commit:      unknown,
		Version:     unknown,
	}
}

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// Initialize populates the build information. Linker flags are all or
// nothing: setting the name without the rest is a broken release build and
// is reported. Without linker flags the toolchain's module and VCS stamps are
// used where present.
func Initialize() error {
	info := defaultInfo()

	if buildName != "" {
		if buildTime == "" {
			return fmt.Errorf("BuildTime is required")
		}
		if buildCommit == "" {
			return fmt.Errorf("BuildCommit is required")
		}
		if buildVersion == "" {
			return fmt.Errorf("BuildVersion is required")
		}
		info.Name = buildName
		info.Time = buildTime
		info.Commit = buildCommit
		info.Version = buildVersion
		buildInfo = info
		return nil
	}

	if bi, ok := readBuildInfo(); ok {
		if v := bi.Main.Version; v != "" {
			info.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Time = s.Value
			}
		}
	}

	buildInfo = info
	return nil
}

// GetBuildInfo returns the current build information. Initialize() should be
// called first; before that the defaults are returned.
func GetBuildInfo() *Info {
	return buildInfo
}
