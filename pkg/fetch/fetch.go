// Package fetch streams image bytes into staging files in fixed-size
// chunks. Progress is fractional when the total length is known and a
// plain 0/100 bracket otherwise. Cancellation takes effect between chunks,
// so a partial file always ends at a chunk boundary no later than the
// interruption point. Nothing here ever deletes a file; partial output is
// left for the caller's teardown to collect.
package fetch

import (
	"burrow/pkg/common"
	"burrow/pkg/display"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// ChunkSize is the transfer granularity. Cancellation and progress are
// observed at multiples of it.
const ChunkSize = 64 * 1024

// Copy streams src into dst chunk by chunk, reporting progress on task
// after every chunk. total is the expected byte count, or -1 when unknown.
// It returns the number of bytes written to dst.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, total int64, task display.Task) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	start := time.Now()

	if total <= 0 {
		task.Progress(0, "starting transfer")
	}

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			// A chunk read after cancellation is dropped, keeping dst at
			// the boundary of the previous chunk.
			if ctx.Err() != nil {
				return written, common.CancelledFault("transfer")
			}
			wn, werr := dst.Write(buf[:n])
			if werr == nil && wn < n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, common.Faultf(common.FaultTransferFailed,
					"transfer broke after %s: %v", humanize.Bytes(uint64(written)), werr)
			}
			written += int64(n)
			report(task, written, total, start)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return written, common.CancelledFault("transfer")
			}
			// Sources that already tagged their failure pass through
			// unchanged, so the originating message survives.
			if common.KindOf(rerr) != common.FaultNone {
				return written, rerr
			}
			return written, common.Faultf(common.FaultTransferFailed,
				"transfer broke after %s: %v", humanize.Bytes(uint64(written)), rerr)
		}
	}

	if total <= 0 {
		task.Progress(100, fmt.Sprintf("%s transferred", humanize.Bytes(uint64(written))))
	}
	return written, nil
}

// ToFile creates the staging file at path and streams src into it.
// The parent directory is created on demand.
func ToFile(ctx context.Context, path string, src io.Reader, total int64, task display.Task) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, common.Faultf(common.FaultTransferFailed,
			"cannot create staging directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, common.Faultf(common.FaultTransferFailed,
			"cannot create staging file %s: %v", path, err)
	}

	written, cerr := Copy(ctx, f, src, total, task)
	if err := f.Close(); err != nil && cerr == nil {
		cerr = common.Faultf(common.FaultTransferFailed,
			"cannot finalize staging file %s: %v", path, err)
	}
	return written, cerr
}

func report(task display.Task, written, total int64, start time.Time) {
	if total > 0 {
		percent := int((float64(written) / float64(total)) * 100)
		elapsed := time.Since(start).Seconds()
		speed := float64(written)
		if elapsed > 0 {
			speed = float64(written) / elapsed
		}
		msg := fmt.Sprintf("%s / %s (%s/s)",
			humanize.Bytes(uint64(written)),
			humanize.Bytes(uint64(total)),
			humanize.Bytes(uint64(speed)))
		task.Progress(percent, msg)
	} else {
		task.Progress(0, fmt.Sprintf("%s transferred", humanize.Bytes(uint64(written))))
	}
}
