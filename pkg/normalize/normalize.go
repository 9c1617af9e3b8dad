// Package normalize rewrites staged images into the canonical tar form the
// backend consumes. Gzip and raw tar streams are already canonical and pass
// through at the same path, byte for byte. Xz and zstd streams are
// decompressed into a sibling .tar file; the compressed original is removed
// as soon as the decode succeeds.
package normalize

import (
	"burrow/pkg/common"
	"burrow/pkg/display"
	"burrow/pkg/fetch"
	"burrow/pkg/image"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Normalize converts the staged image at path into its canonical form and
// returns the path of the result. A pass-through encoding returns the input
// path untouched. On failure the partial output, if any, is left in place
// for the caller's teardown to collect.
func Normalize(ctx context.Context, path string, enc image.Encoding, task display.Task) (string, error) {
	switch enc {
	case image.RawTar, image.GzipTar:
		// Already canonical for the backend; the file is not rewritten.
		return path, nil
	case image.XzTar:
		return decodeXz(ctx, path, task)
	case image.ZstTar:
		return decodeZstd(ctx, path, task)
	default:
		return "", common.Faultf(common.FaultUnsupportedFormat,
			"image encoding %q has no normalization rule", enc)
	}
}

func decodeXz(ctx context.Context, src string, task display.Task) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", common.Faultf(common.FaultDecodeFailed,
			"cannot open staged image %s: %v", src, err)
	}
	defer in.Close()

	xr, err := xz.NewReader(in)
	if err != nil {
		return "", common.Faultf(common.FaultDecodeFailed,
			"image %s is not an xz stream: %v", filepath.Base(src), err)
	}

	dst, err := writeTar(ctx, src, xr, task)
	if err != nil {
		return "", err
	}

	in.Close()
	removeOriginal(src)
	return dst, nil
}

func decodeZstd(ctx context.Context, src string, task display.Task) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", common.Faultf(common.FaultDecodeFailed,
			"cannot open staged image %s: %v", src, err)
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return "", common.Faultf(common.FaultDecodeFailed,
			"image %s is not a zstd stream: %v", filepath.Base(src), err)
	}
	defer zr.Close()

	dst, err := writeTar(ctx, src, zr, task)
	if err != nil {
		return "", err
	}

	zr.Close()
	in.Close()
	removeOriginal(src)
	return dst, nil
}

// writeTar streams the decoded tar into the sibling .tar file.
func writeTar(ctx context.Context, src string, dec io.Reader, task display.Task) (string, error) {
	dst := TarPath(src)
	out, err := os.Create(dst)
	if err != nil {
		return "", common.Faultf(common.FaultTransferFailed,
			"cannot create %s: %v", dst, err)
	}

	_, cerr := fetch.Copy(ctx, out, &faultReader{r: dec, src: src}, -1, task)
	if err := out.Close(); err != nil && cerr == nil {
		cerr = common.Faultf(common.FaultTransferFailed,
			"cannot finalize %s: %v", dst, err)
	}
	if cerr != nil {
		return "", cerr
	}
	return dst, nil
}

// faultReader tags decoder read errors so they surface as decode failures
// rather than transfer breaks.
type faultReader struct {
	r   io.Reader
	src string
}

func (f *faultReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err != nil && err != io.EOF {
		return n, common.Faultf(common.FaultDecodeFailed,
			"compressed image %s is malformed: %v", filepath.Base(f.src), err)
	}
	return n, err
}

// TarPath derives the output name for a staged image: the staged extension
// is replaced with .tar. A source already named .tar gets a second suffix to
// avoid writing over itself. Teardown uses this to locate the partial output
// of a decode that failed before reporting its path.
func TarPath(src string) string {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".tar"
	if dst == src {
		dst = src + ".tar"
	}
	return dst
}

func removeOriginal(src string) {
	if err := os.Remove(src); err != nil {
		slog.Warn("Could not remove compressed original", "path", src, "error", err)
	}
}
