/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package table provides Table, an immutable in-memory dataset of typed
// columns, and ColumnRef, a column reference validated once against a Table's
// schema.
//
// A Table is never modified after construction.  Filtering a Table with
// Select yields a new Table sharing the original's schema and cell data, so
// that ColumnRefs resolved against the original remain valid for all of its
// derived Tables:
//
//	catRef, err := tbl.Resolve("cat")
//	if err != nil {
//	  return err // wraps ErrColumnNotFound
//	}
//	sub := tbl.Select(rows)
//	for row := 0; row < sub.Len(); row++ {
//	  fmt.Println(sub.Value(row, catRef))
//	}
package table

import (
	"errors"
	"fmt"
)

// ErrColumnNotFound is returned when a referenced column is absent from a
// Table.
var ErrColumnNotFound = errors.New("column not found")

// Type is the inferred type of a Table column.
type Type int

// Column types.
const (
	String Type = iota
	Number
	Date
)

func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "string"
	}
}

// Resolution is the finest calendar unit carried by a date column.
type Resolution int

// Date resolutions, finest first.
const (
	Day Resolution = iota
	Month
	Year
)

func (r Resolution) String() string {
	switch r {
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "day"
	}
}

// Column describes a single named, typed Table column.  Resolution is only
// meaningful for Date columns.
type Column struct {
	Name       string
	Type       Type
	Resolution Resolution
}

type schema struct {
	columns []Column
	byName  map[string]int
}

// ColumnRef is a reference to a column, resolved against a Table's schema.
// The zero ColumnRef refers to no column.
type ColumnRef struct {
	schema *schema
	idx    int
}

// Valid returns true if the receiver refers to a column.
func (cr ColumnRef) Valid() bool {
	return cr.schema != nil
}

// Column returns the referenced column's description.
func (cr ColumnRef) Column() Column {
	if cr.schema == nil {
		return Column{}
	}
	return cr.schema.columns[cr.idx]
}

// Name returns the referenced column's name.
func (cr ColumnRef) Name() string {
	return cr.Column().Name
}

// Type returns the referenced column's type.
func (cr ColumnRef) Type() Type {
	return cr.Column().Type
}

// Table is an immutable, ordered sequence of rows over a set of typed
// columns.
type Table struct {
	schema *schema
	rows   [][]Value
}

// New returns a new Table with the provided columns and row-major cells.
// Each row must have exactly one Value per column, and column names must be
// unique.
func New(columns []Column, rows [][]Value) (*Table, error) {
	s := &schema{
		columns: append([]Column{}, columns...),
		byName:  make(map[string]int, len(columns)),
	}
	for idx, col := range columns {
		if _, ok := s.byName[col.Name]; ok {
			return nil, fmt.Errorf("duplicate column '%s'", col.Name)
		}
		s.byName[col.Name] = idx
	}
	for idx, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", idx, len(row), len(columns))
		}
	}
	return &Table{
		schema: s,
		rows:   rows,
	}, nil
}

// Len returns the number of rows in the receiver.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the receiver's columns, in order.
func (t *Table) Columns() []Column {
	return append([]Column{}, t.schema.columns...)
}

// Column returns the named column, if it exists.
func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.schema.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.schema.columns[idx], true
}

// Resolve returns a ColumnRef for the named column, or an error wrapping
// ErrColumnNotFound if there is no such column.
func (t *Table) Resolve(name string) (ColumnRef, error) {
	idx, ok := t.schema.byName[name]
	if !ok {
		return ColumnRef{}, fmt.Errorf("%w: '%s'", ErrColumnNotFound, name)
	}
	return ColumnRef{
		schema: t.schema,
		idx:    idx,
	}, nil
}

// ResolveOptional is like Resolve, but an empty name yields the zero
// ColumnRef and no error.
func (t *Table) ResolveOptional(name string) (ColumnRef, error) {
	if name == "" {
		return ColumnRef{}, nil
	}
	return t.Resolve(name)
}

// Check returns an error wrapping ErrColumnNotFound if ref is valid but was
// not resolved against the receiver's schema.  The zero ColumnRef passes.
func (t *Table) Check(ref ColumnRef) error {
	if ref.schema != nil && ref.schema != t.schema {
		return fmt.Errorf("%w: '%s'", ErrColumnNotFound, ref.Name())
	}
	return nil
}

// Value returns the Value at the specified row in the referenced column.  It
// panics if ref was not resolved against the receiver's schema.
func (t *Table) Value(row int, ref ColumnRef) Value {
	if ref.schema != t.schema {
		panic(fmt.Sprintf("column reference '%s' does not belong to this table", ref.Name()))
	}
	return t.rows[row][ref.idx]
}

// Row returns a copy of the specified row's Values.
func (t *Table) Row(row int) []Value {
	return append([]Value{}, t.rows[row]...)
}

// Select returns a new Table containing the specified rows of the receiver,
// in the order given.  The returned Table shares the receiver's schema.
func (t *Table) Select(rows []int) *Table {
	ret := &Table{
		schema: t.schema,
		rows:   make([][]Value, len(rows)),
	}
	for idx, row := range rows {
		ret.rows[idx] = t.rows[row]
	}
	return ret
}

// Head returns a Table containing at most the first n rows of the receiver.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{
		schema: t.schema,
		rows:   t.rows[:n],
	}
}

// Distinct returns the distinct values of the referenced column in
// first-seen order.  Values are distinguished by their display text, and
// nulls are omitted.
func (t *Table) Distinct(ref ColumnRef) []Value {
	seen := map[string]struct{}{}
	var ret []Value
	for row := range t.rows {
		v := t.Value(row, ref)
		if v.IsNull() {
			continue
		}
		key := v.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ret = append(ret, v)
	}
	return ret
}
