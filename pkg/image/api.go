// Package image resolves rootfs image references into byte streams.
// A reference is either a logical name backed by the builtin table or the
// user catalog, or an absolute file/http/https URI. Only named entries carry
// an authoritative encoding; arbitrary URIs are taken as-is and never
// normalized.
package image

import (
	"context"
	"io"
)

// Descriptor identifies a resolved image source.
// Immutable
type Descriptor struct {
	// Name is the logical name or raw reference the user supplied.
	Name string
	// Source is the URI the bytes come from.
	Source string
	// Encoding is the declared encoding of the byte stream.
	Encoding Encoding
}

// Entry is one row of the image table (builtin or catalog).
type Entry struct {
	Name     string
	URL      string
	Encoding Encoding
	// Origin is "builtin" or "catalog".
	Origin string
	// Discover, when set, locates the current artifact URL at resolve time.
	Discover *Discovery
}

// Discovery describes how to locate the artifact URL from an index document.
type Discovery struct {
	// Mode selects the strategy: "links" scans anchor hrefs, "query" runs a
	// jq expression over the decoded document.
	Mode string `json:"mode"`
	// Index is the URL of the index document.
	Index string `json:"index"`
	// Pattern is the href regular expression for links mode.
	Pattern string `json:"pattern,omitempty"`
	// Query is the jq expression for query mode. It must produce the
	// artifact URL as a string.
	Query string `json:"query,omitempty"`
}

// Manager resolves image references and opens their byte streams.
type Manager interface {
	// Resolve maps a reference to a Descriptor, running discovery for
	// catalog entries that need it. An empty reference selects the default
	// image.
	Resolve(ctx context.Context, ref string) (*Descriptor, error)

	// Open starts the byte stream for a resolved descriptor. The returned
	// length is -1 when the total size is unknown.
	Open(ctx context.Context, desc *Descriptor) (io.ReadCloser, int64, error)

	// List returns the merged image table, builtin entries first.
	List() ([]Entry, error)

	// Add records a catalog entry. Builtin names are reserved.
	Add(entry Entry) error

	// Remove deletes a catalog entry by name.
	Remove(name string) error
}
