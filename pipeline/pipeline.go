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

// Package pipeline runs the charting pipeline over a loaded table:
//
//	render(state) = Build(Aggregate(Filter(table, state)), state)
//
// A State is an immutable snapshot of every chart option, rebuilt for each
// interaction.  Run resolves the State's column names against the table once,
// failing fast if any is absent, then filters, partitions the filtered rows
// into facets, aggregates each facet concurrently, and builds the chart.
//
// Run is deterministic: the same table and State always yield an equal
// Result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	"github.com/ilhamster/traceviz/tabviz/analysis/filter"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	"github.com/ilhamster/traceviz/tabviz/category"
	chartbuilder "github.com/ilhamster/traceviz/tabviz/chart_builder"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/style"
	"golang.org/x/sync/errgroup"
)

// ChartType is the user-selected chart type.
type ChartType int

// Supported chart types.
const (
	Count ChartType = iota
	Proportion
	Scatter
)

func (ct ChartType) String() string {
	switch ct {
	case Proportion:
		return "proportion"
	case Scatter:
		return "scatter"
	default:
		return "count"
	}
}

// MarshalJSON marshals a ChartType as its name.
func (ct ChartType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// ParseChartType parses a chart type name.  The empty string is Count.
func ParseChartType(s string) (ChartType, error) {
	switch s {
	case "", "count":
		return Count, nil
	case "proportion":
		return Proportion, nil
	case "scatter":
		return Scatter, nil
	default:
		return 0, fmt.Errorf("unknown chart type '%s'", s)
	}
}

// Legend holds legend options.
type Legend struct {
	Visible  bool
	Position chartspec.Position
}

// State holds every chart option.  States should not be modified once
// passed to Run.
type State struct {
	Title, Subtitle string
	Type            ChartType
	// Column names.  X is required, and Y is required for scatter charts.
	// Color and Facet may be empty.
	X, Y, Color, Facet string
	Granularity        table.Granularity
	DateRange          *filter.DateRange
	// If non-nil, only these categories are shown.
	Categories   filter.CategorySet
	NumericRange *filter.NumericRange
	// User-chosen colors by category.
	Colors      map[string]string
	Legend      Legend
	FacetLayout chartspec.LayoutMode
	Style       style.Style
}

// DefaultState returns a State with default options and no columns chosen.
func DefaultState() State {
	return State{
		Legend: Legend{
			Visible:  true,
			Position: chartspec.Right,
		},
		Style: style.Default(),
	}
}

// FacetRows holds the aggregated rows of a single facet.
type FacetRows struct {
	Facet string           `json:"facet,omitempty"`
	Rows  []aggregator.Row `json:"rows"`
}

// Result is the outcome of a pipeline run.  If Empty is true, no rows
// survived filtering and aggregation, and Spec is nil.
type Result struct {
	Spec         *chartspec.ChartSpec
	Rows         []FacetRows
	Stats        aggregator.Stats
	FilteredRows int
	Empty        bool
}

type refs struct {
	x, y, color, facet table.ColumnRef
}

func resolve(tbl *table.Table, state State) (refs, error) {
	var ret refs
	var err error
	if state.X == "" {
		return ret, fmt.Errorf("%w: no x-axis column selected", table.ErrColumnNotFound)
	}
	if ret.x, err = tbl.Resolve(state.X); err != nil {
		return ret, err
	}
	if state.Type == Scatter {
		if state.Y == "" {
			return ret, fmt.Errorf("%w: no y-axis column selected", table.ErrColumnNotFound)
		}
		if ret.y, err = tbl.Resolve(state.Y); err != nil {
			return ret, err
		}
	}
	if ret.color, err = tbl.ResolveOptional(state.Color); err != nil {
		return ret, err
	}
	if ret.facet, err = tbl.ResolveOptional(state.Facet); err != nil {
		return ret, err
	}
	return ret, nil
}

// partition splits tbl by the distinct values of the referenced column, in
// first-seen order.  Rows with a null facet value belong to no facet.  If
// ref is the zero ColumnRef, tbl is returned as a single unnamed facet.
func partition(tbl *table.Table, ref table.ColumnRef) []chartbuilder.Facet {
	if !ref.Valid() {
		return []chartbuilder.Facet{{Table: tbl}}
	}
	rowsByValue := map[string][]int{}
	for row := 0; row < tbl.Len(); row++ {
		v := tbl.Value(row, ref)
		if v.IsNull() {
			continue
		}
		rowsByValue[v.String()] = append(rowsByValue[v.String()], row)
	}
	var ret []chartbuilder.Facet
	for _, v := range tbl.Distinct(ref) {
		ret = append(ret, chartbuilder.Facet{
			Value: v.String(),
			Table: tbl.Select(rowsByValue[v.String()]),
		})
	}
	return ret
}

// dispatch invokes fn once per index in [0, n) concurrently.  The first
// error cancels the provided context for the remaining invocations, and is
// returned.
func dispatch(ctx context.Context, n int, fn func(ctx context.Context, idx int) error) error {
	errg, ctx := errgroup.WithContext(ctx)
	for idx := 0; idx < n; idx++ {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, idx)
		})
	}
	return errg.Wait()
}

// Run runs the pipeline over tbl with the provided State.
func Run(ctx context.Context, tbl *table.Table, state State) (*Result, error) {
	r, err := resolve(tbl, state)
	if err != nil {
		return nil, err
	}
	all := category.New(category.All)
	if r.color.Valid() {
		all = category.FromColumn(tbl, r.color)
	}
	filtered, err := filter.Apply(tbl, filter.Spec{
		X:            r.x,
		Y:            r.y,
		Category:     r.color,
		Granularity:  state.Granularity,
		DateRange:    state.DateRange,
		Categories:   state.Categories,
		NumericRange: state.NumericRange,
		Scatter:      state.Type == Scatter,
	})
	if err != nil {
		return nil, err
	}
	ret := &Result{
		FilteredRows: filtered.Len(),
	}
	if filtered.Len() == 0 {
		ret.Empty = true
		return ret, nil
	}
	if state.Type != Scatter {
		// Facets share the chart's granularity, so it is checked once over
		// all of them.
		if err := aggregator.CheckGranularity(filtered, r.x, state.Granularity); err != nil {
			return nil, err
		}
	}
	facets := partition(filtered, r.facet)
	opts := chartbuilder.Options{
		Kind:        chartspec.StackedBar,
		Title:       state.Title,
		Subtitle:    state.Subtitle,
		X:           r.x,
		Y:           r.y,
		Color:       r.color,
		Facet:       r.facet,
		Metric:      aggregator.Count,
		Granularity: state.Granularity,
		Colors:      state.Colors,
		Legend:      chartspec.NewLegend(state.Legend.Visible, state.Legend.Position),
		Layout:      state.FacetLayout,
		Style:       state.Style,
	}
	switch state.Type {
	case Scatter:
		opts.Kind = chartspec.Scatter
	case Proportion:
		opts.Metric = aggregator.Proportion
	}
	if opts.Kind == chartspec.StackedBar {
		stats := make([]aggregator.Stats, len(facets))
		if err := dispatch(ctx, len(facets), func(ctx context.Context, idx int) error {
			rows, s, err := aggregator.AggregateWithStats(facets[idx].Table, aggregator.Spec{
				X:                  r.x,
				Category:           r.color,
				Granularity:        state.Granularity,
				Metric:             opts.Metric,
				CategoryOrder:      all.IDs(),
				GranularityChecked: true,
			})
			if err != nil {
				return err
			}
			facets[idx].Rows, stats[idx] = rows, s
			return nil
		}); err != nil {
			return nil, err
		}
		empty := true
		for idx, f := range facets {
			ret.Stats.Dropped += stats[idx].Dropped
			ret.Stats.NullCategory += stats[idx].NullCategory
			ret.Rows = append(ret.Rows, FacetRows{Facet: f.Value, Rows: f.Rows})
			if len(f.Rows) > 0 {
				empty = false
			}
		}
		if empty {
			ret.Empty = true
			return ret, nil
		}
	}
	spec, err := chartbuilder.Build(chartbuilder.Input{
		Table:         filtered,
		Facets:        facets,
		AllCategories: all,
	}, opts)
	if err != nil {
		return nil, err
	}
	if opts.Kind == chartspec.Scatter && !hasPoints(spec) {
		ret.Empty = true
		return ret, nil
	}
	ret.Spec = spec
	return ret, nil
}

func hasPoints(spec *chartspec.ChartSpec) bool {
	for _, panel := range spec.Panels {
		for _, series := range panel.Series {
			if len(series.Points) > 0 {
				return true
			}
		}
	}
	return false
}
