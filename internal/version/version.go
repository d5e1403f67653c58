// Package version reports this binary's own build version and the Go
// toolchain it was built with, for the root resource's discovery payload
// (§4.9). Adapted from the teacher's version package, trimmed to the two
// facts the root resource actually needs rather than its full dependency
// inventory.
package version

import "runtime/debug"

const modulePath = "github.com/trellis-ldp/ldpcore"

// BuildInfo is the subset of runtime/debug.BuildInfo the root resource
// reports.
type BuildInfo struct {
	GoVersion string `json:"goVersion"`
	Version   string `json:"version"`
}

// Current reads the running binary's embedded module version, falling
// back to "dev" for a `go run`/unreleased build where debug.ReadBuildInfo
// reports "(devel)" or nothing at all.
func Current() BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return BuildInfo{GoVersion: "unknown", Version: "dev"}
	}

	v := info.Main.Version
	if info.Main.Path != modulePath {
		// Running via `go run` or a test binary: info.Main describes the
		// test harness, not this module, so look it up among Deps instead.
		v = dependencyVersion(info.Deps, modulePath)
	}
	if v == "" || v == "(devel)" {
		v = "dev"
	}
	return BuildInfo{GoVersion: info.GoVersion, Version: v}
}

func dependencyVersion(deps []*debug.Module, path string) string {
	for _, dep := range deps {
		if dep.Path == path {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return ""
}
