package image

import (
	"burrow/pkg/common"
	"fmt"
)

// DefaultImage is selected when a run names no image.
const DefaultImage = "alpine"

const (
	alpineVersion  = "3.21"
	ubuntuCodename = "noble"
	debianCodename = "bookworm"
	debianVersion  = "12"
)

// builtinEntries returns the fixed image table for the given host
// architecture. The URLs are pinned; nothing here is discovered at runtime.
func builtinEntries(arch common.ArchType) []Entry {
	alpineArch, debArch := "x86_64", "amd64"
	if arch == common.ArchArm64 {
		alpineArch, debArch = "aarch64", "arm64"
	}

	entries := []Entry{
		{
			Name:     "alpine",
			URL:      fmt.Sprintf("https://dl-cdn.alpinelinux.org/alpine/v%s/releases/%s/alpine-minirootfs-%s.0-%s.tar.gz", alpineVersion, alpineArch, alpineVersion, alpineArch),
			Encoding: GzipTar,
			Origin:   "builtin",
		},
		{
			Name:     "ubuntu",
			URL:      fmt.Sprintf("https://cloud-images.ubuntu.com/%s/current/%s-server-cloudimg-%s-root.tar.xz", ubuntuCodename, ubuntuCodename, debArch),
			Encoding: XzTar,
			Origin:   "builtin",
		},
		{
			Name:     "debian",
			URL:      fmt.Sprintf("https://cloud.debian.org/images/cloud/%s/latest/debian-%s-genericcloud-%s.tar.xz", debianCodename, debianVersion, debArch),
			Encoding: XzTar,
			Origin:   "builtin",
		},
	}

	// The bootstrap tarball is only published for x86_64.
	if arch == common.ArchX64 {
		entries = append(entries, Entry{
			Name:     "arch",
			URL:      "https://geo.mirror.pkgbuild.com/iso/latest/archlinux-bootstrap-x86_64.tar.zst",
			Encoding: ZstTar,
			Origin:   "builtin",
		})
	}

	return entries
}
