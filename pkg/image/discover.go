package image

import (
	"burrow/pkg/common"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/itchyny/gojq"
	"golang.org/x/net/html"
)

// discoverer turns a Discovery rule into the current artifact URL.
// Everything here happens before the first image byte is transferred, so
// all failures are resolution failures.
type discoverer struct {
	web *httpOpener
}

func newDiscoverer(web *httpOpener) *discoverer {
	return &discoverer{web: web}
}

// Locate fetches the index document and extracts the artifact URL.
func (d *discoverer) Locate(ctx context.Context, disc *Discovery) (string, error) {
	body, err := d.fetchIndex(ctx, disc.Index)
	if err != nil {
		return "", err
	}

	var found string
	switch disc.Mode {
	case "links":
		found, err = lastLink(body, disc.Pattern)
	case "query":
		found, err = runQuery(ctx, body, disc.Query)
	default:
		err = fmt.Errorf("unknown discovery mode %q", disc.Mode)
	}
	if err != nil {
		return "", common.Faultf(common.FaultUnresolvableSource,
			"discovery against %s failed: %v", disc.Index, err)
	}

	resolved, err := resolveRef(disc.Index, found)
	if err != nil {
		return "", common.Faultf(common.FaultUnresolvableSource,
			"discovery against %s produced unusable URL %q: %v", disc.Index, found, err)
	}
	return resolved, nil
}

func (d *discoverer) fetchIndex(ctx context.Context, index string) (string, error) {
	rc, _, err := d.web.Open(ctx, index)
	if err != nil {
		if common.IsCancellation(err) {
			return "", err
		}
		return "", common.Faultf(common.FaultUnresolvableSource,
			"cannot load discovery index: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		if ctx.Err() != nil {
			return "", common.CancelledFault("discovery")
		}
		return "", common.Faultf(common.FaultUnresolvableSource,
			"cannot read discovery index %s: %v", index, err)
	}
	return string(data), nil
}

// lastLink scans anchor hrefs in document order and returns the last one
// matching the pattern. Index pages list releases oldest first, so the last
// match is the current one.
func lastLink(body, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("bad pattern: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cannot parse index page: %w", err)
	}

	var last string
	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if ok && re.MatchString(href) {
			last = href
		}
	})
	if last == "" {
		return "", fmt.Errorf("no link matches %q", pattern)
	}
	return last, nil
}

// runQuery decodes the index as JSON, or as HTML converted to a document
// map, and runs the jq expression over it. The expression must yield the
// artifact URL as a string.
func runQuery(ctx context.Context, body, query string) (string, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return "", fmt.Errorf("bad query: %w", err)
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		node, err := html.Parse(strings.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("index is neither JSON nor HTML: %w", err)
		}
		doc = nodeToMap(node)
	}

	iter := q.RunWithContext(ctx, doc)
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := res.(error); ok {
			return "", fmt.Errorf("query failed: %w", err)
		}
		if s, ok := res.(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("query %q produced no URL string", query)
}

// nodeToMap converts an HTML node tree into plain maps and slices so a jq
// expression can walk it. Each element becomes {tag, attr, children, text}.
func nodeToMap(n *html.Node) any {
	if n == nil {
		return nil
	}

	if n.Type == html.TextNode {
		txt := strings.TrimSpace(n.Data)
		if txt == "" {
			return nil
		}
		return txt
	}

	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return nil
	}

	m := make(map[string]any)
	if n.Type == html.ElementNode {
		m["tag"] = n.Data
		attrs := make(map[string]any)
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		m["attr"] = attrs
	} else {
		m["tag"] = "#document"
	}

	children := []any{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		child := nodeToMap(c)
		if child != nil {
			children = append(children, child)
		}
	}
	m["children"] = children

	var sb strings.Builder
	var flattenText func(*html.Node)
	flattenText = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			flattenText(c)
		}
	}
	flattenText(n)
	m["text"] = strings.TrimSpace(sb.String())

	return m
}

// resolveRef resolves a possibly relative artifact reference against the
// index URL.
func resolveRef(index, ref string) (string, error) {
	base, err := url.Parse(index)
	if err != nil {
		return "", err
	}
	u, err := base.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return "", fmt.Errorf("scheme %q is not fetchable", u.Scheme)
	}
	return u.String(), nil
}

// validateDiscovery checks a discovery rule before it enters the catalog.
func validateDiscovery(d *Discovery) error {
	u, err := url.Parse(d.Index)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("discovery index %q is not an http(s) URL", d.Index)
	}
	switch d.Mode {
	case "links":
		if _, err := regexp.Compile(d.Pattern); err != nil {
			return fmt.Errorf("discovery pattern: %w", err)
		}
	case "query":
		if _, err := gojq.Parse(d.Query); err != nil {
			return fmt.Errorf("discovery query: %w", err)
		}
	default:
		return fmt.Errorf("unknown discovery mode %q", d.Mode)
	}
	return nil
}
