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

// Package filter applies date-range, category-inclusion, and numeric-range
// filters to a table.Table.
package filter

import (
	"time"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
)

// DateRange is an inclusive date range.
type DateRange struct {
	Start, End time.Time
}

// NumericRange is an inclusive numeric range.
type NumericRange struct {
	Min, Max float64
}

// CategorySet is a set of category display values.  A nil CategorySet
// applies no filter, while an empty non-nil CategorySet excludes every row.
type CategorySet map[string]struct{}

// NewCategorySet returns a non-nil CategorySet containing the provided
// categories.
func NewCategorySet(categories ...string) CategorySet {
	ret := make(CategorySet, len(categories))
	for _, cat := range categories {
		ret[cat] = struct{}{}
	}
	return ret
}

// Contains returns true if the receiver contains category.
func (cs CategorySet) Contains(category string) bool {
	_, ok := cs[category]
	return ok
}

// Spec specifies the filters to apply.
type Spec struct {
	// The x-axis, y-axis, and category columns.  Zero ColumnRefs are
	// unreferenced.
	X, Y, Category table.ColumnRef
	// Granularity selects calendar-year (ByYear) or exact-date comparison
	// for DateRange.
	Granularity table.Granularity
	// If non-nil, and X is a date column, rows whose x-axis date falls
	// outside DateRange are excluded.
	DateRange *DateRange
	// If non-nil, rows whose category is not in Categories are excluded.
	Categories CategorySet
	// If non-nil, Scatter is true, and Y is a numeric column, rows whose
	// y-axis value falls outside NumericRange are excluded.
	NumericRange *NumericRange
	Scatter      bool
}

// Filter reports whether the specified row should be retained.
type Filter func(row int) bool

// ConcatenateFilters returns a Filter retaining only rows retained by all
// provided Filters.
func ConcatenateFilters(filters ...Filter) Filter {
	return func(row int) bool {
		for _, f := range filters {
			if !f(row) {
				return false
			}
		}
		return true
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WithDateRange returns a Filter retaining rows whose referenced date lies
// within dr.  Under ByYear granularity, calendar years are compared;
// otherwise, dates are.  Null dates are excluded.
func WithDateRange(tbl *table.Table, ref table.ColumnRef, dr DateRange, granularity table.Granularity) Filter {
	if granularity == table.ByYear {
		startYear, endYear := dr.Start.Year(), dr.End.Year()
		return func(row int) bool {
			t, err := table.ExpectDateValue(tbl.Value(row, ref))
			if err != nil {
				return false
			}
			return t.Year() >= startYear && t.Year() <= endYear
		}
	}
	start, end := dateOnly(dr.Start), dateOnly(dr.End)
	return func(row int) bool {
		t, err := table.ExpectDateValue(tbl.Value(row, ref))
		if err != nil {
			return false
		}
		t = dateOnly(t)
		return !t.Before(start) && !t.After(end)
	}
}

// WithCategories returns a Filter retaining rows whose referenced value is a
// member of categories.
func WithCategories(tbl *table.Table, ref table.ColumnRef, categories CategorySet) Filter {
	return func(row int) bool {
		return categories.Contains(tbl.Value(row, ref).String())
	}
}

// WithNumericRange returns a Filter retaining rows whose referenced number
// lies within nr.  Null and non-numeric values are excluded.
func WithNumericRange(tbl *table.Table, ref table.ColumnRef, nr NumericRange) Filter {
	return func(row int) bool {
		f, err := table.ExpectNumberValue(tbl.Value(row, ref))
		if err != nil {
			return false
		}
		return f >= nr.Min && f <= nr.Max
	}
}

// Apply returns a new Table containing the rows of tbl that pass all filters
// in spec.  If spec references a column absent from tbl, Apply returns an
// error wrapping table.ErrColumnNotFound.
func Apply(tbl *table.Table, spec Spec) (*table.Table, error) {
	for _, ref := range []table.ColumnRef{spec.X, spec.Y, spec.Category} {
		if err := tbl.Check(ref); err != nil {
			return nil, err
		}
	}
	var filters []Filter
	if spec.DateRange != nil && spec.X.Valid() && spec.X.Type() == table.Date {
		filters = append(filters, WithDateRange(tbl, spec.X, *spec.DateRange, spec.Granularity))
	}
	if spec.Categories != nil && spec.Category.Valid() {
		filters = append(filters, WithCategories(tbl, spec.Category, spec.Categories))
	}
	// A numeric range over a non-numeric y-axis is ignored.
	if spec.Scatter && spec.NumericRange != nil && spec.Y.Valid() && spec.Y.Type() == table.Number {
		filters = append(filters, WithNumericRange(tbl, spec.Y, *spec.NumericRange))
	}
	if len(filters) == 0 {
		return tbl, nil
	}
	f := ConcatenateFilters(filters...)
	var rows []int
	for row := 0; row < tbl.Len(); row++ {
		if f(row) {
			rows = append(rows, row)
		}
	}
	return tbl.Select(rows), nil
}
