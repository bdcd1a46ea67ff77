// internal/registry/registry.go

// Package registry holds the path template tables that address one record of a
// known list layout. A registry maps each logical field to a template that turns
// a 1-based row index into an XPath locator.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IndexToken is the placeholder substituted by pattern based templates.
const IndexToken = "{index}"

var (
	ErrEmptyRegistry   = errors.New("registry has no fields")
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrMissingTemplate = errors.New("field has no path template")
	ErrUnknownRegistry = errors.New("unknown registry")
	ErrInvalidPattern  = errors.New("invalid locator pattern")
)

// Kind selects how a matched node becomes a field value.
type Kind int

const (
	// KindText reads the trimmed text content of the node.
	KindText Kind = iota
	// KindLink reads the resolved absolute URL of the node's anchor.
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLink:
		return "link"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind converts a configuration string into a Kind. Empty means text.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return KindText, nil
	case "link", "href", "url":
		return KindLink, nil
	default:
		return KindText, fmt.Errorf("unsupported field kind: %s", s)
	}
}

// PathTemplate computes the locator of a field for a 1-based record index.
type PathTemplate func(index int) string

// Field is one column of a registry.
type Field struct {
	Name     string
	Template PathTemplate
	Kind     Kind
	Optional bool
}

// Locator returns the field's locator for index.
func (f Field) Locator(index int) string {
	return f.Template(index)
}

// Registry is the ordered set of fields describing one page layout.
type Registry struct {
	Name   string
	Fields []Field
}

// New validates fields and builds a registry.
func New(name string, fields ...Field) (*Registry, error) {
	r := &Registry{Name: name, Fields: fields}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the registry is usable by the extractor.
func (r *Registry) Validate() error {
	if r == nil {
		return ErrEmptyRegistry
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("%s: %w", r.Name, ErrEmptyRegistry)
	}
	seen := make(map[string]bool, len(r.Fields))
	for i, f := range r.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%s: field %d has no name", r.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: %w: %s", r.Name, ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true
		if f.Template == nil {
			return fmt.Errorf("%s: %w: %s", r.Name, ErrMissingTemplate, f.Name)
		}
	}
	return nil
}

// FieldNames returns the field names in registry order.
func (r *Registry) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Pattern builds a template from a locator containing IndexToken.
func Pattern(pattern string) (PathTemplate, error) {
	if !strings.Contains(pattern, IndexToken) {
		return nil, fmt.Errorf("%w: %q does not contain %s", ErrInvalidPattern, pattern, IndexToken)
	}
	return func(index int) string {
		return strings.ReplaceAll(pattern, IndexToken, strconv.Itoa(index))
	}, nil
}

// MustPattern is Pattern for static tables; it panics on a bad pattern.
func MustPattern(pattern string) PathTemplate {
	t, err := Pattern(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Row builds a template addressing the index-th row of a table body followed by
// a cell suffix: prefix + "[index]" + suffix.
func Row(prefix, suffix string) PathTemplate {
	return func(index int) string {
		return prefix + "[" + strconv.Itoa(index) + "]" + suffix
	}
}
