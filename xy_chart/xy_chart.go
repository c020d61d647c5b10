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

// Package xychart facilitates the construction of scatter chart panels from
// table rows.
//
// Each axis is backed by a Coordinates, which maps the values of one column
// to axis coordinates according to the column's type:
//
//   - numbers map to themselves, on a numeric axis;
//   - dates map to days since the Unix epoch, on a time axis;
//   - strings map to their first-seen position, on an ordinal axis.
//
// Coordinates are built once over the whole filtered table, so that all
// facets share the same axes.  Then a new XYChart may be created via
//
//	chart := New(xCoords, yCoords, colorRef, categories, colors)
//
// and one panel built per facet via
//
//	panel := chart.Panel(facetValue, facetTable)
//
// Rows with a null x or y value, or whose category is not shown, are
// skipped.
package xychart

import (
	"time"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	"github.com/ilhamster/traceviz/tabviz/category"
	categoryaxis "github.com/ilhamster/traceviz/tabviz/category_axis"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/color"
	continuousaxis "github.com/ilhamster/traceviz/tabviz/continuous_axis"
)

// Coordinates maps the values of a column to axis coordinates.
type Coordinates struct {
	ref     table.ColumnRef
	ordinal *categoryaxis.Ordinal
	axis    chartspec.Axis
}

// NewCoordinates returns Coordinates for the referenced column, with an axis
// spanning the column's values in tbl.
func NewCoordinates(tbl *table.Table, ref table.ColumnRef) *Coordinates {
	c := &Coordinates{
		ref: ref,
	}
	switch ref.Type() {
	case table.Number:
		var extents []float64
		for row := 0; row < tbl.Len(); row++ {
			if f, err := table.ExpectNumberValue(tbl.Value(row, ref)); err == nil {
				extents = append(extents, f)
			}
		}
		c.axis = continuousaxis.NewDoubleAxis(ref.Name(), extents...)
	case table.Date:
		var extents []time.Time
		for row := 0; row < tbl.Len(); row++ {
			if d, err := table.ExpectDateValue(tbl.Value(row, ref)); err == nil {
				extents = append(extents, d)
			}
		}
		c.axis = continuousaxis.NewTimestampAxis(ref.Name(), extents...)
	default:
		c.ordinal = categoryaxis.NewOrdinal(category.FromColumn(tbl, ref).IDs()...)
		c.axis = c.ordinal.Axis(ref.Name())
	}
	return c
}

// Axis returns the receiver's axis.
func (c *Coordinates) Axis() chartspec.Axis {
	return c.axis
}

// Of returns the coordinate of the specified value, or false if it has none.
func (c *Coordinates) Of(v table.Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	switch c.ref.Type() {
	case table.Number:
		f, err := table.ExpectNumberValue(v)
		return f, err == nil
	case table.Date:
		d, err := table.ExpectDateValue(v)
		if err != nil {
			return 0, false
		}
		return continuousaxis.Day(d), true
	default:
		return c.ordinal.Position(v.String())
	}
}

// XYChart represents a scatter chart.
type XYChart struct {
	x, y       *Coordinates
	colorRef   table.ColumnRef
	categories *category.Set
	colors     color.Map
}

// New returns a new XYChart.  If colorRef is the zero ColumnRef, all points
// belong to category.All.
func New(x, y *Coordinates, colorRef table.ColumnRef, categories *category.Set, colors color.Map) *XYChart {
	return &XYChart{
		x:          x,
		y:          y,
		colorRef:   colorRef,
		categories: categories,
		colors:     colors,
	}
}

// Panel returns the panel for the rows of tbl, with one series per category
// in category order.
func (xyc *XYChart) Panel(facet string, tbl *table.Table) chartspec.Panel {
	points := map[string][]chartspec.Point{}
	for row := 0; row < tbl.Len(); row++ {
		cat := category.All
		if xyc.colorRef.Valid() {
			cv := tbl.Value(row, xyc.colorRef)
			if cv.IsNull() {
				continue
			}
			cat = cv.String()
		}
		if !xyc.categories.Contains(cat) {
			continue
		}
		xv, yv := tbl.Value(row, xyc.x.ref), tbl.Value(row, xyc.y.ref)
		x, ok := xyc.x.Of(xv)
		if !ok {
			continue
		}
		y, ok := xyc.y.Of(yv)
		if !ok {
			continue
		}
		points[cat] = append(points[cat], chartspec.Point{
			X:     x,
			Y:     y,
			XText: xv.String(),
			YText: yv.String(),
		})
	}
	panel := chartspec.Panel{
		Facet:  facet,
		Series: make([]chartspec.Series, 0, xyc.categories.Len()),
	}
	for _, cat := range xyc.categories.IDs() {
		panel.Series = append(panel.Series, chartspec.Series{
			Category: cat,
			Color:    xyc.colors.Of(cat),
			Points:   points[cat],
		})
	}
	return panel
}
