// Package config manages application-wide settings and directory structures.
// It follows XDG specifications for storing cache, configuration, and state.
package config

import (
	"burrow/pkg/common"
)

// ArchType represents a target CPU architecture.
type ArchType = common.ArchType

const (
	// ArchX64 represents the x86_64/AMD64 architecture.
	ArchX64 ArchType = common.ArchX64
	// ArchArm64 represents the AArch64/ARM64 architecture.
	ArchArm64 ArchType = common.ArchArm64
	// ArchUnknown is used when the architecture cannot be determined.
	ArchUnknown ArchType = common.ArchUnknown
)

// ParseArch converts a string representation of a CPU architecture into an ArchType.
func ParseArch(arch string) (ArchType, error) {
	return common.ParseArch(arch)
}
