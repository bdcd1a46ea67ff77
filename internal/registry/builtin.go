// internal/registry/builtin.go
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Names of the built-in layouts.
const (
	// UserGenerated addresses lists the account owner created.
	UserGenerated = "user"
	// SystemGenerated addresses lists the site generated on its own.
	SystemGenerated = "system"
)

// Field names shared by the built-in layouts.
const (
	FieldName      = "Name"
	FieldGeography = "Geography"
	FieldTitle     = "Title"
	FieldAccount   = "Account"
)

const (
	userRows   = "/html/body/main/div[1]/div[2]/div[4]/table/tbody/tr"
	systemRows = "/html/body/main/div[1]/div[2]/div[5]/table/tbody/tr"
)

// User returns the registry for user-generated contact lists.
func User() *Registry {
	return &Registry{
		Name: UserGenerated,
		Fields: []Field{
			{Name: FieldName, Template: Row(userRows, "/td[1]/div/figure/a/span")},
			{Name: FieldGeography, Template: Row(userRows, "/td[3]")},
			{Name: FieldTitle, Template: Row(userRows, "/td[1]/div/div[2]/div[2]/span/div")},
			{Name: FieldAccount, Template: Row(userRows, "/td[2]/div/div/div/a/div/div/div/span"), Optional: true},
		},
	}
}

// System returns the registry for system-generated contact lists.
func System() *Registry {
	return &Registry{
		Name: SystemGenerated,
		Fields: []Field{
			{Name: FieldName, Template: Row(systemRows, "/td[1]/div/div[2]/div[1]/div[1]/a")},
			{Name: FieldGeography, Template: Row(systemRows, "/td[3]")},
			{Name: FieldTitle, Template: Row(systemRows, "/td[1]/div/div[2]/div[2]/span/div")},
			{Name: FieldAccount, Template: Row(systemRows, "/td[2]/div/div/div/a/div/div/div/span"), Optional: true},
		},
	}
}

// Set is a name-addressable collection of registries.
type Set struct {
	byName map[string]*Registry
}

// NewSet returns a set holding the built-in layouts.
func NewSet() *Set {
	s := &Set{byName: make(map[string]*Registry)}
	s.byName[UserGenerated] = User()
	s.byName[SystemGenerated] = System()
	return s
}

// Add registers r, replacing any registry with the same name.
func (s *Set) Add(r *Registry) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.byName[strings.ToLower(r.Name)] = r
	return nil
}

// Lookup finds a registry by case-insensitive name.
func (s *Set) Lookup(name string) (*Registry, error) {
	r, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegistry, name)
	}
	return r, nil
}

// Names returns the registered names sorted alphabetically.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
