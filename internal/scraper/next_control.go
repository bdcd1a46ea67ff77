// internal/scraper/next_control.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/valpere/ListScrapexter/internal/document"
)

// NextControlConfig describes how to find the "next" control of a list.
type NextControlConfig struct {
	// Selector is a CSS selector, or an XPath expression when it starts with
	// "/" or "(".
	Selector string `yaml:"selector" json:"selector"`
	// DisabledAttr is an extra attribute whose presence marks the control inert.
	DisabledAttr string `yaml:"disabled_attr,omitempty" json:"disabled_attr,omitempty"`
	// DisabledClass is an extra class that marks the control inert.
	DisabledClass string `yaml:"disabled_class,omitempty" json:"disabled_class,omitempty"`
}

// ControlState is the classification of a located next control.
type ControlState struct {
	Found      bool
	Actionable bool
	// Reason explains why the control is inert.
	Reason string
	// Selection is the matched element, nil when not found.
	Selection *goquery.Selection
	// Target is the absolute destination of an anchor control, resolved
	// against the page URL. Empty for buttons and script driven anchors.
	Target string
}

// IsXPath reports whether selector is an XPath expression.
func IsXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(")
}

// FindNextControl locates the first element matching cfg.Selector in doc.
func FindNextControl(doc *document.HTML, cfg NextControlConfig) (*goquery.Selection, error) {
	if strings.TrimSpace(cfg.Selector) == "" {
		return nil, fmt.Errorf("next control selector is empty")
	}

	if IsXPath(cfg.Selector) {
		node, err := htmlquery.Query(doc.Root(), cfg.Selector)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLocator, cfg.Selector, err)
		}
		if node == nil {
			return nil, nil
		}
		return goquery.NewDocumentFromNode(node).Selection, nil
	}

	selection := doc.Selection().Find(cfg.Selector)
	if selection.Length() == 0 {
		return nil, nil
	}
	return selection.First(), nil
}

// ClassifyNextControl locates the next control in doc and decides whether
// clicking it would advance the list.
func ClassifyNextControl(doc *document.HTML, cfg NextControlConfig) (ControlState, error) {
	selection, err := FindNextControl(doc, cfg)
	if err != nil {
		return ControlState{}, err
	}
	if selection == nil {
		return ControlState{Reason: "not found"}, nil
	}

	state := ControlState{Found: true, Selection: selection}
	state.Reason = inertReason(selection, cfg)

	if href, ok := selection.Attr("href"); ok && selection.Is("a") && actionableHref(href) {
		state.Target = doc.Resolve(href)
		_, scripted := selection.Attr("onclick")
		if state.Reason == "" && !scripted && doc.BaseURL() != "" && state.Target == doc.BaseURL() {
			state.Reason = "links to the current page"
		}
	}

	state.Actionable = state.Reason == ""
	return state, nil
}

func inertReason(selection *goquery.Selection, cfg NextControlConfig) string {
	if cfg.DisabledAttr != "" {
		if _, exists := selection.Attr(cfg.DisabledAttr); exists {
			return cfg.DisabledAttr + " attribute"
		}
	}
	if _, exists := selection.Attr("disabled"); exists {
		return "disabled attribute"
	}
	if v, _ := selection.Attr("aria-disabled"); strings.EqualFold(strings.TrimSpace(v), "true") {
		return "aria-disabled"
	}

	if cfg.DisabledClass != "" && selection.HasClass(cfg.DisabledClass) {
		return cfg.DisabledClass + " class"
	}
	if selection.HasClass("disabled") {
		return "disabled class"
	}

	// A span in place of a link is a common rendering of the last page.
	if selection.Is("span") {
		return "span"
	}

	if selection.Is("a") {
		if _, exists := selection.Attr("onclick"); exists {
			return ""
		}
		href, exists := selection.Attr("href")
		if !exists || !actionableHref(href) {
			return "anchor without destination"
		}
	}
	return ""
}

func actionableHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	switch {
	case h == "", h == "#":
		return false
	case strings.HasPrefix(h, "javascript:void"):
		return false
	}
	return true
}
