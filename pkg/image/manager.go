package image

import (
	"burrow/pkg/common"
	"burrow/pkg/config"
	"burrow/pkg/lazyjson"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// namePattern constrains catalog names so they can never be mistaken for a
// URI reference.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

type manager struct {
	cfg     config.ReadOnly
	catalog lazyjson.Manager[Catalog]
	openers map[string]StreamOpener
	disc    *discoverer
}

// New creates a Manager backed by the builtin table and the user catalog.
func New(cfg config.ReadOnly) Manager {
	m := &manager{
		cfg:     cfg,
		catalog: lazyjson.New[Catalog](cfg.GetCatalogPath()),
		openers: make(map[string]StreamOpener),
	}

	web := newHTTPOpener()
	m.disc = newDiscoverer(web)
	for _, o := range []StreamOpener{newFileOpener(), web} {
		for _, s := range o.Schemes() {
			m.openers[s] = o
		}
	}
	return m
}

// Resolve maps a reference to a Descriptor. Named entries carry the
// authoritative encoding from their table row; an arbitrary URI never has
// one inferred for it and is used as-is.
func (m *manager) Resolve(ctx context.Context, ref string) (*Descriptor, error) {
	if ref == "" {
		ref = DefaultImage
	}

	entry, found, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	if found {
		src := entry.URL
		if entry.Discover != nil {
			src, err = m.disc.Locate(ctx, entry.Discover)
			if err != nil {
				return nil, err
			}
		}
		return &Descriptor{Name: entry.Name, Source: src, Encoding: entry.Encoding}, nil
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return nil, common.Faultf(common.FaultUnresolvableSource,
			"image %q is neither a known name nor an absolute URI", ref)
	}
	if _, ok := m.openers[strings.ToLower(u.Scheme)]; !ok {
		return nil, common.Faultf(common.FaultUnresolvableSource,
			"unsupported scheme %q in image source %q", u.Scheme, ref)
	}

	// No table row, no inference: the stream is passed through untouched.
	return &Descriptor{Name: ref, Source: ref, Encoding: GzipTar}, nil
}

// Open starts the byte stream for a resolved descriptor.
func (m *manager) Open(ctx context.Context, desc *Descriptor) (io.ReadCloser, int64, error) {
	u, err := url.Parse(desc.Source)
	if err != nil {
		return nil, 0, common.Faultf(common.FaultUnresolvableSource,
			"image source %q is not a valid URI: %v", desc.Source, err)
	}
	opener, ok := m.openers[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, 0, common.Faultf(common.FaultUnresolvableSource,
			"unsupported scheme %q in image source %q", u.Scheme, desc.Source)
	}
	return opener.Open(ctx, desc.Source)
}

// List returns the merged image table, builtin entries first.
func (m *manager) List() ([]Entry, error) {
	entries := builtinEntries(m.cfg.GetArch())
	cat, err := m.catalog.Get()
	if err != nil {
		return nil, fmt.Errorf("cannot read image catalog: %w", err)
	}
	for _, c := range cat.Images {
		if m.isBuiltin(c.Name) {
			continue
		}
		entries = append(entries, c.entry())
	}
	return entries, nil
}

// Add records a catalog entry, replacing a previous entry with the same name.
func (m *manager) Add(entry Entry) error {
	if !namePattern.MatchString(entry.Name) {
		return fmt.Errorf("invalid image name %q", entry.Name)
	}
	if m.isBuiltin(entry.Name) {
		return fmt.Errorf("image name %q is builtin", entry.Name)
	}
	u, err := url.Parse(entry.URL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("image URL %q is not an absolute URI", entry.URL)
	}
	if _, ok := m.openers[strings.ToLower(u.Scheme)]; !ok {
		return fmt.Errorf("unsupported scheme %q in image URL", u.Scheme)
	}
	if entry.Discover != nil {
		if err := validateDiscovery(entry.Discover); err != nil {
			return err
		}
	}

	err = m.catalog.Modify(func(cat *Catalog) error {
		rec := CatalogImage{
			Name:     entry.Name,
			URL:      entry.URL,
			Encoding: entry.Encoding.String(),
			Discover: entry.Discover,
		}
		for i, c := range cat.Images {
			if c.Name == entry.Name {
				cat.Images[i] = rec
				return nil
			}
		}
		cat.Images = append(cat.Images, rec)
		return nil
	})
	if err != nil {
		return err
	}
	return m.catalog.Save()
}

// Remove deletes a catalog entry by name.
func (m *manager) Remove(name string) error {
	found := false
	err := m.catalog.Modify(func(cat *Catalog) error {
		kept := cat.Images[:0]
		for _, c := range cat.Images {
			if c.Name == name {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		cat.Images = kept
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no catalog image named %q", name)
	}
	return m.catalog.Save()
}

func (m *manager) isBuiltin(name string) bool {
	for _, e := range builtinEntries(m.cfg.GetArch()) {
		if e.Name == name {
			return true
		}
	}
	return false
}

func (m *manager) lookup(name string) (Entry, bool, error) {
	for _, e := range builtinEntries(m.cfg.GetArch()) {
		if e.Name == name {
			return e, true, nil
		}
	}
	cat, err := m.catalog.Get()
	if err != nil {
		return Entry{}, false, common.Faultf(common.FaultUnresolvableSource,
			"cannot read image catalog: %v", err)
	}
	for _, c := range cat.Images {
		if c.Name == name {
			return c.entry(), true, nil
		}
	}
	return Entry{}, false, nil
}

