// internal/document/document.go

// Package document evaluates positional XPath locators against a snapshot of a
// rendered page.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrInvalidLocator reports a locator the XPath engine cannot compile.
var ErrInvalidLocator = errors.New("invalid locator")

// Node is a single matched element.
type Node interface {
	// Text returns the raw text content of the node and its descendants.
	Text() string
	// Link returns the absolute destination URL of the node, or of its nearest
	// anchor ancestor, and whether one exists.
	Link() (string, bool)
	// Attr returns an attribute value of the node.
	Attr(name string) (string, bool)
}

// Document resolves a locator to at most one node. A nil Node with a nil error
// means no match; a match with empty text is still a non-nil Node.
type Document interface {
	Find(locator string) (Node, error)
}

// HTML is a parsed DOM snapshot.
type HTML struct {
	root *html.Node
	base *url.URL
}

// Parse reads UTF-8 HTML. baseURL resolves relative links and may be empty.
func Parse(r io.Reader, baseURL string) (*HTML, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return newHTML(root, baseURL)
}

// ParseString is Parse over a string.
func ParseString(s, baseURL string) (*HTML, error) {
	return Parse(strings.NewReader(s), baseURL)
}

// ParseWithCharset decodes content using the charset declared by contentType
// or the document's meta tags before parsing.
func ParseWithCharset(content []byte, contentType, baseURL string) (*HTML, error) {
	reader, err := charset.NewReader(bytes.NewReader(content), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	return Parse(reader, baseURL)
}

func newHTML(root *html.Node, baseURL string) (*HTML, error) {
	doc := &HTML{root: root}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		doc.base = u
	}
	return doc, nil
}

// Find evaluates an XPath locator and returns the first node in document order.
func (d *HTML) Find(locator string) (Node, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidLocator)
	}
	n, err := htmlquery.Query(d.root, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLocator, locator, err)
	}
	if n == nil {
		return nil, nil
	}
	return &element{node: n, base: d.base}, nil
}

// Selection exposes the snapshot to CSS selectors.
func (d *HTML) Selection() *goquery.Document {
	return goquery.NewDocumentFromNode(d.root)
}

// BaseURL returns the URL the snapshot was taken from, if known.
func (d *HTML) BaseURL() string {
	if d.base == nil {
		return ""
	}
	return d.base.String()
}

// Resolve turns a possibly relative reference into an absolute URL.
func (d *HTML) Resolve(ref string) string {
	return resolve(d.base, ref)
}

// Root returns the document node.
func (d *HTML) Root() *html.Node {
	return d.root
}

type element struct {
	node *html.Node
	base *url.URL
}

func (e *element) Text() string {
	return htmlquery.InnerText(e.node)
}

func (e *element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *element) Link() (string, bool) {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		href := strings.TrimSpace(htmlquery.SelectAttr(n, "href"))
		if href == "" {
			return "", false
		}
		return resolve(e.base, href), true
	}
	return "", false
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
