package image

// Catalog is the on-disk structure of the user image catalog (images.json).
type Catalog struct {
	Images []CatalogImage `json:"images"`
}

// CatalogImage is one user-defined image entry.
type CatalogImage struct {
	Name     string     `json:"name"`
	URL      string     `json:"url"`
	Encoding string     `json:"encoding"`
	Discover *Discovery `json:"discover,omitempty"`
}

// entry converts a catalog record into a table Entry. A record whose
// encoding does not parse is kept with EncodingUnknown so the failure
// surfaces as an unsupported format, not as a missing image.
func (c CatalogImage) entry() Entry {
	enc, err := ParseEncoding(c.Encoding)
	if err != nil {
		enc = EncodingUnknown
	}
	return Entry{
		Name:     c.Name,
		URL:      c.URL,
		Encoding: enc,
		Origin:   "catalog",
		Discover: c.Discover,
	}
}
