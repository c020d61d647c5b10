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

// Package color supports declaring color spaces and assigning colors to
// chart categories.
//
// A Space is an ordered palette of HTML hex colors.  Each category is given a
// default color by its position in the full, unfiltered category order, so
// that a category keeps its color as filters change and across facets:
//
//	cats := category.New("cars", "trucks", "buses")
//	colors := color.Assign(color.Default, cats, shown, map[string]string{
//	  "trucks": "#FF0000",
//	})
//
// Explicit overrides replace the default for their category.  Only
// categories in the shown Set receive a color; categories filtered out of a
// chart are omitted from its Map entirely.
package color

import (
	"fmt"
	"strings"

	"github.com/ilhamster/traceviz/tabviz/category"
)

// Fallback is the color of a category with no assigned color.
const Fallback = "#9CA3AF"

// Space represents a color space: a palette which maps indices to colors.
type Space struct {
	name   string
	colors []string
}

// NewSpace defines a new color space.  Indices beyond the last color wrap
// around to the first.
func NewSpace(name string, colors ...string) *Space {
	return &Space{
		name:   name,
		colors: colors,
	}
}

// Default is the default categorical palette.
var Default = NewSpace("default",
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
)

// Name returns the Space's name.
func (s *Space) Name() string {
	return s.name
}

// Len returns the number of colors in the Space.
func (s *Space) Len() int {
	return len(s.colors)
}

// At returns the color at the specified index, modulo the Space's size.
func (s *Space) At(idx int) string {
	if len(s.colors) == 0 || idx < 0 {
		return Fallback
	}
	return s.colors[idx%len(s.colors)]
}

// Normalize returns the canonical '#RRGGBB' form of a '#RGB' or '#RRGGBB'
// color, or an error if hex is neither.
func Normalize(hex string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return "", fmt.Errorf("invalid color '%s'", hex)
	}
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", fmt.Errorf("invalid color '%s'", hex)
		}
	}
	return "#" + strings.ToUpper(h), nil
}

// Map maps category IDs to colors.
type Map map[string]string

// Of returns the color of the specified category, or Fallback if it has
// none.
func (m Map) Of(id string) string {
	if c, ok := m[id]; ok {
		return c
	}
	return Fallback
}

// Assign returns a Map over the categories in shown.  Each category's color
// is its normalized override, if it has a valid one, or else the color in
// space at the category's index within all.  Categories of shown absent from
// all are colored by their index within shown.
func Assign(space *Space, all, shown *category.Set, overrides map[string]string) Map {
	ret := make(Map, shown.Len())
	for idx, id := range shown.IDs() {
		if c, ok := overrides[id]; ok {
			if norm, err := Normalize(c); err == nil {
				ret[id] = norm
				continue
			}
		}
		if allIdx, ok := all.Index(id); ok {
			idx = allIdx
		}
		ret[id] = space.At(idx)
	}
	return ret
}
