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

// Package chartbuilder maps aggregated rows, for stacked bar charts, or
// filtered table rows, for scatter charts, to a chartspec.ChartSpec.
//
// Build is a pure function of its Input and Options.  All panels of a chart
// share its axes, its category order, and its color map, so that a category
// has the same color in every facet.
package chartbuilder

import (
	"fmt"

	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	barchart "github.com/ilhamster/traceviz/tabviz/bar_chart"
	"github.com/ilhamster/traceviz/tabviz/category"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/color"
	"github.com/ilhamster/traceviz/tabviz/style"
	xychart "github.com/ilhamster/traceviz/tabviz/xy_chart"
)

// Facet is a single partition of the filtered table.  Value is empty for
// unfaceted charts.
type Facet struct {
	Value string
	Table *table.Table
	// The facet's aggregated rows.  Only used for stacked bar charts.
	Rows []aggregator.Row
}

// Input holds the data to chart.
type Input struct {
	// The filtered, unfaceted table.
	Table  *table.Table
	Facets []Facet
	// The category order of the unfiltered table.  Default colors are
	// assigned by position in this order.  If nil, the order of the
	// displayed categories is used.
	AllCategories *category.Set
}

// Options holds chart options.
type Options struct {
	Kind            chartspec.Kind
	Title, Subtitle string
	// The x-axis column is required.  The y-axis column is required for
	// scatter charts, and ignored otherwise.
	X, Y table.ColumnRef
	// Optional color and facet columns.
	Color, Facet table.ColumnRef
	Metric       aggregator.Metric
	Granularity  table.Granularity
	// User-chosen colors by category.
	Colors map[string]string
	Legend chartspec.Legend
	Layout chartspec.LayoutMode
	Style  style.Style
}

func (opts Options) check(tbl *table.Table) error {
	if !opts.X.Valid() {
		return fmt.Errorf("%w: no x-axis column", table.ErrColumnNotFound)
	}
	if opts.Kind == chartspec.Scatter && !opts.Y.Valid() {
		return fmt.Errorf("%w: no y-axis column", table.ErrColumnNotFound)
	}
	for _, ref := range []table.ColumnRef{opts.X, opts.Y, opts.Color, opts.Facet} {
		if err := tbl.Check(ref); err != nil {
			return err
		}
	}
	return nil
}

// shownCategories returns the categories present in in, in the order of
// in.AllCategories.
func shownCategories(in Input, opts Options) *category.Set {
	if !opts.Color.Valid() {
		return category.New(category.All)
	}
	var shown *category.Set
	if opts.Kind == chartspec.Scatter {
		shown = category.FromColumn(in.Table, opts.Color)
	} else {
		var ids []string
		for _, f := range in.Facets {
			for _, r := range f.Rows {
				ids = append(ids, r.Category)
			}
		}
		shown = category.New(ids...)
	}
	if in.AllCategories != nil {
		shown = shown.Reorder(in.AllCategories.IDs())
	}
	return shown
}

// Build returns the ChartSpec for the provided input and options.  It
// returns an error wrapping table.ErrColumnNotFound if a referenced column is
// absent from the input table.
func Build(in Input, opts Options) (*chartspec.ChartSpec, error) {
	if err := opts.check(in.Table); err != nil {
		return nil, err
	}
	shown := shownCategories(in, opts)
	all := in.AllCategories
	if all == nil {
		all = shown
	}
	colors := color.Assign(color.Default, all, shown, opts.Colors)
	spec := &chartspec.ChartSpec{
		Kind:       opts.Kind,
		Title:      opts.Title,
		Subtitle:   opts.Subtitle,
		XField:     opts.X.Name(),
		ColorField: opts.Color.Name(),
		FacetField: opts.Facet.Name(),
		Categories: shown.IDs(),
		ColorMap:   colors,
		Layout:     chartspec.NewLayout(opts.Layout, len(in.Facets)),
		Panels:     make([]chartspec.Panel, 0, len(in.Facets)),
		Legend:     opts.Legend,
		Style:      opts.Style.Clamp(),
	}
	if opts.Kind == chartspec.Scatter {
		x := xychart.NewCoordinates(in.Table, opts.X)
		y := xychart.NewCoordinates(in.Table, opts.Y)
		xyc := xychart.New(x, y, opts.Color, shown, colors)
		for _, f := range in.Facets {
			spec.Panels = append(spec.Panels, xyc.Panel(f.Value, f.Table))
		}
		spec.YField = opts.Y.Name()
		spec.XAxis, spec.YAxis = x.Axis(), y.Axis()
		return spec, nil
	}
	rowSets := make([][]aggregator.Row, len(in.Facets))
	for idx, f := range in.Facets {
		rowSets[idx] = f.Rows
	}
	bc := barchart.New(aggregator.MergeBuckets(opts.Granularity, rowSets...), shown, colors, opts.Metric)
	maxTotal := 0.0
	for _, f := range in.Facets {
		panel, total := bc.Panel(f.Value, f.Rows)
		spec.Panels = append(spec.Panels, panel)
		if total > maxTotal {
			maxTotal = total
		}
	}
	spec.YField = opts.Metric.String()
	spec.Metric = opts.Metric.String()
	spec.Granularity = opts.Granularity.String()
	spec.XAxis = bc.XAxis(opts.X.Name())
	spec.YAxis = bc.YAxis(opts.Metric.String(), maxTotal)
	return spec, nil
}
