// Package contracts carries the version identifiers shared by every
// public surface of the extraction engine.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "0.1.0"

	// DataFormatVersion tags every exported statement document so readers
	// can reject formats they do not understand.
	DataFormatVersion = "financial_statement_v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// GetVersionInfo returns the build's version details.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
}

// String returns a human-readable version line.
func (v VersionInfo) String() string {
	return fmt.Sprintf("finstmt %s (%s, built %s, commit %s)",
		v.Version, v.GoVersion, v.BuildTime, v.GitCommit)
}
