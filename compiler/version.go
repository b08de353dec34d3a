// Package compiler defines the narrow tool contract an orchestrated
// build talks to - a compiler, a jar tool, a runner, and the JDK
// detection/version-comparison helpers they share - generalized from
// the teacher's builder/interfaces.go, builder/provider.go, and
// tools/default_*.go.
package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// JavaVersion is a parsed Java tool version, e.g. from `javac -version`.
type JavaVersion struct {
	Major  int
	Minor  int
	Patch  int
	Full   string
	Vendor string
}

// String renders the most specific form available.
func (v JavaVersion) String() string {
	if v.Full != "" {
		return v.Full
	}
	if v.Patch > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor > 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d", v.Major)
}

// IsJavaNOrLater reports whether this version's major release is at
// least n.
func (v JavaVersion) IsJavaNOrLater(n int) bool {
	return v.Major >= n
}

// CompareVersions returns -1, 0, or 1 as v1 is less than, equal to, or
// greater than v2, comparing major, then minor, then patch.
func CompareVersions(v1, v2 JavaVersion) int {
	if v1.Major != v2.Major {
		if v1.Major < v2.Major {
			return -1
		}
		return 1
	}
	if v1.Minor != v2.Minor {
		if v1.Minor < v2.Minor {
			return -1
		}
		return 1
	}
	if v1.Patch != v2.Patch {
		if v1.Patch < v2.Patch {
			return -1
		}
		return 1
	}
	return 0
}

var versionPattern = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// parseJavaVersion extracts major/minor/patch and a best-effort vendor
// guess from the combined stdout+stderr of a `-version` invocation.
func parseJavaVersion(output string) JavaVersion {
	version := JavaVersion{Full: strings.TrimSpace(output)}

	if matches := versionPattern.FindStringSubmatch(output); len(matches) > 0 {
		version.Major, _ = strconv.Atoi(matches[1])
		if len(matches) > 2 && matches[2] != "" {
			version.Minor, _ = strconv.Atoi(matches[2])
		}
		if len(matches) > 3 && matches[3] != "" {
			version.Patch, _ = strconv.Atoi(matches[3])
		}
		// Old version scheme: "1.8.0_292" reports major=1, minor=8.
		if version.Major == 1 && version.Minor > 0 {
			version.Major = version.Minor
			version.Minor = 0
		}
	}

	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "openjdk"):
		version.Vendor = "OpenJDK"
	case strings.Contains(lower, "oracle"):
		version.Vendor = "Oracle"
	case strings.Contains(lower, "graalvm"):
		version.Vendor = "GraalVM"
	case strings.Contains(lower, "adoptopenjdk"):
		version.Vendor = "AdoptOpenJDK"
	case strings.Contains(lower, "temurin"):
		version.Vendor = "Eclipse Temurin"
	default:
		version.Vendor = "Unknown"
	}
	return version
}
