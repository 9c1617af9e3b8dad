package image

import (
	"fmt"
	"strings"
)

// Encoding identifies how an image byte stream is packed.
type Encoding string

const (
	// RawTar is an uncompressed tar stream.
	RawTar Encoding = "tar"
	// GzipTar is a gzip-compressed tar stream. The backend consumes it
	// directly, so it shares the untouched pass-through path with RawTar.
	GzipTar Encoding = "tar.gz"
	// XzTar is an xz-compressed tar stream.
	XzTar Encoding = "tar.xz"
	// ZstTar is a zstd-compressed tar stream.
	ZstTar Encoding = "tar.zst"
	// EncodingUnknown is an encoding burrow has no rule for.
	EncodingUnknown Encoding = "unknown"
)

// ParseEncoding converts a string representation into an Encoding.
// It supports the common short aliases used in catalog files.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "tar", "raw":
		return RawTar, nil
	case "tar.gz", "tgz", "gz", "gzip":
		return GzipTar, nil
	case "tar.xz", "txz", "xz":
		return XzTar, nil
	case "tar.zst", "tzst", "zst", "zstd":
		return ZstTar, nil
	default:
		return EncodingUnknown, fmt.Errorf("unsupported encoding: %s", s)
	}
}

// String returns the string representation of the Encoding.
func (e Encoding) String() string {
	return string(e)
}
