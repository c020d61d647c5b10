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

// Package category supports declaring the ordered set of data categories
// shown in a chart: the distinct values of the color column, or the single
// implicit category when no color column is chosen.
//
// A Set's order is the deterministic category order used everywhere a chart
// enumerates categories: stacking order, legend order, and default color
// assignment.  Sets are immutable; Reorder and Restrict return new Sets.
package category

import "github.com/ilhamster/traceviz/tabviz/analysis/table"

// All is the single category of a chart with no color column.
const All = "All"

// Set is an ordered set of category IDs.
type Set struct {
	ids   []string
	index map[string]int
}

// New returns a new Set holding the provided IDs, in first-seen order.
// Repeated IDs are ignored.
func New(ids ...string) *Set {
	s := &Set{
		index: make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = len(s.ids)
		s.ids = append(s.ids, id)
	}
	return s
}

// FromColumn returns a Set of the distinct display values of the referenced
// column of tbl, in first-seen order.  Nulls are omitted.
func FromColumn(tbl *table.Table, ref table.ColumnRef) *Set {
	vals := tbl.Distinct(ref)
	ids := make([]string, len(vals))
	for idx, v := range vals {
		ids[idx] = v.String()
	}
	return New(ids...)
}

// IDs returns the receiver's IDs in order.
func (s *Set) IDs() []string {
	return append([]string{}, s.ids...)
}

// Len returns the number of categories in the receiver.
func (s *Set) Len() int {
	return len(s.ids)
}

// Index returns the position of id within the receiver.
func (s *Set) Index(id string) (int, bool) {
	idx, ok := s.index[id]
	return idx, ok
}

// Contains returns true if the receiver contains id.
func (s *Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Reorder returns a Set with the receiver's members, those listed in order
// first and in that order, followed by the rest in the receiver's order.
// IDs in order that are not members are ignored.
func (s *Set) Reorder(order []string) *Set {
	ids := make([]string, 0, len(s.ids))
	for _, id := range order {
		if s.Contains(id) {
			ids = append(ids, id)
		}
	}
	return New(append(ids, s.ids...)...)
}

// Restrict returns a Set holding the receiver's members for which keep
// returns true, in the receiver's order.
func (s *Set) Restrict(keep func(id string) bool) *Set {
	ids := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	return New(ids...)
}
