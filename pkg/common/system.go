package common

import (
	"fmt"
	"runtime"
	"strings"
)

// ArchType represents a target CPU architecture.
type ArchType string

const (
	// ArchX64 represents the x86_64/AMD64 architecture.
	ArchX64 ArchType = "x64"
	// ArchArm64 represents the AArch64/ARM64 architecture.
	ArchArm64 ArchType = "arm64"
	// ArchUnknown is used when the architecture cannot be determined.
	ArchUnknown ArchType = "unknown"
)

// ParseArch converts a string representation of a CPU architecture into an
// ArchType. It supports common aliases like "amd64" for x64.
func ParseArch(arch string) (ArchType, error) {
	switch strings.ToLower(arch) {
	case "amd64", "x64", "x86_64":
		return ArchX64, nil
	case "arm64", "aarch64":
		return ArchArm64, nil
	case "unknown":
		return ArchUnknown, nil
	default:
		return ArchUnknown, fmt.Errorf("unsupported architecture: %s", arch)
	}
}

// HostArch returns the architecture of the running process.
func HostArch() ArchType {
	a, err := ParseArch(runtime.GOARCH)
	if err != nil {
		return ArchUnknown
	}
	return a
}

// String returns the string representation of the ArchType.
func (a ArchType) String() string {
	return string(a)
}
