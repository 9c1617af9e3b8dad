package image

import (
	"burrow/pkg/common"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
)

// StreamOpener opens the byte stream behind one URI scheme family.
type StreamOpener interface {
	// Open returns the stream and its total length in bytes, -1 when the
	// length is unknown up front.
	Open(ctx context.Context, uri string) (io.ReadCloser, int64, error)
	// Schemes returns the URI schemes this opener handles.
	Schemes() []string
}

type fileOpener struct{}

func newFileOpener() *fileOpener {
	return &fileOpener{}
}

func (h *fileOpener) Schemes() []string {
	return []string{"file"}
}

func (h *fileOpener) Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, 0, common.Faultf(common.FaultUnresolvableSource, "image source %q is not a valid URI: %v", uri, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return nil, 0, common.Faultf(common.FaultUnresolvableSource, "file source %q names a remote host", uri)
	}

	f, err := os.Open(u.Path)
	if err != nil {
		return nil, 0, common.Faultf(common.FaultFetchRejected, "cannot open image file %s: %v", u.Path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, common.Faultf(common.FaultFetchRejected, "cannot stat image file %s: %v", u.Path, err)
	}
	return f, info.Size(), nil
}

type httpOpener struct {
	client *http.Client
}

func newHTTPOpener() *httpOpener {
	return &httpOpener{
		// Transfers have no deadline of their own; only cancellation
		// stops them.
		client: &http.Client{Timeout: 0},
	}
}

func (h *httpOpener) Schemes() []string {
	return []string{"http", "https"}
}

func (h *httpOpener) Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0, common.Faultf(common.FaultUnresolvableSource, "cannot build request for %s: %v", uri, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, common.CancelledFault("fetch")
		}
		return nil, 0, common.Faultf(common.FaultFetchRejected, "cannot fetch %s: %v", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, common.Faultf(common.FaultFetchRejected, "server answered %s for %s", resp.Status, uri)
	}

	return resp.Body, resp.ContentLength, nil
}
