// internal/table/store.go

// Package table provides the column-oriented accumulator used while scraping:
// each field owns an ordered list of per-row values and columns keep the order
// in which fields were first seen.
package table

import "fmt"

// Store maps field names to ordered value sequences. The zero value is not
// usable; call New.
type Store struct {
	order   []string
	columns map[string][]string
}

// New returns an empty store.
func New() *Store {
	return &Store{columns: make(map[string][]string)}
}

// Append adds value to the end of field's column, registering the column on
// first use.
func (s *Store) Append(field, value string) {
	if _, ok := s.columns[field]; !ok {
		s.order = append(s.order, field)
	}
	s.columns[field] = append(s.columns[field], value)
}

// AppendRow adds one complete record. fields and values are parallel. Columns
// not named by fields are padded so every column ends at the same length.
func (s *Store) AppendRow(fields, values []string) error {
	if len(fields) != len(values) {
		return fmt.Errorf("row has %d fields but %d values", len(fields), len(values))
	}
	rows := s.Rows()
	for _, f := range fields {
		s.ensure(f, rows)
	}
	for i, f := range fields {
		s.columns[f] = append(s.columns[f], values[i])
	}
	s.pad(rows + 1)
	return nil
}

// Merge appends other's rows below the rows of s, column by column. Columns
// first seen in other are added after the existing ones and back-filled with
// empty strings.
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	before := s.Rows()
	added := other.Rows()
	for _, f := range other.order {
		s.ensure(f, before)
		s.columns[f] = append(s.columns[f], other.columns[f]...)
	}
	s.pad(before + added)
}

// Columns returns the column names in first-discovery order.
func (s *Store) Columns() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Column returns a copy of the values of field.
func (s *Store) Column(field string) []string {
	col := s.columns[field]
	out := make([]string, len(col))
	copy(out, col)
	return out
}

// Rows returns the length of the longest column.
func (s *Store) Rows() int {
	longest := 0
	for _, col := range s.columns {
		if len(col) > longest {
			longest = len(col)
		}
	}
	return longest
}

// Empty reports whether the store holds no rows.
func (s *Store) Empty() bool {
	return s.Rows() == 0
}

// Row returns the values of row i in column order. Columns shorter than i
// yield empty strings.
func (s *Store) Row(i int) []string {
	row := make([]string, len(s.order))
	for c, f := range s.order {
		if col := s.columns[f]; i < len(col) {
			row[c] = col[i]
		}
	}
	return row
}

// Records returns every row as a slice in column order.
func (s *Store) Records() [][]string {
	n := s.Rows()
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = s.Row(i)
	}
	return out
}

// Ragged reports whether columns differ in length.
func (s *Store) Ragged() bool {
	n := s.Rows()
	for _, col := range s.columns {
		if len(col) != n {
			return true
		}
	}
	return false
}

func (s *Store) ensure(field string, rows int) {
	if _, ok := s.columns[field]; ok {
		return
	}
	s.order = append(s.order, field)
	s.columns[field] = make([]string, rows)
}

func (s *Store) pad(rows int) {
	for f, col := range s.columns {
		for len(col) < rows {
			col = append(col, "")
		}
		s.columns[f] = col
	}
}
