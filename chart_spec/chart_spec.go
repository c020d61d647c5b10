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

// Package chartspec defines ChartSpec, a renderer-independent description of
// a stacked bar or scatter chart.
//
// A ChartSpec is plain data: it is JSON-serializable, holds no wall-clock
// fields, and is fully determined by the table and options it was built
// from.  Renderers draw a ChartSpec without consulting the table.
//
// The structure of a ChartSpec is:
//
//	ChartSpec
//	  chart-wide fields, colors, legend, style
//	  XAxis, YAxis      shared by all panels
//	  Layout            panel grid dimensions
//	  Panels            one per facet value, or one if unfaceted
//	    Series          one per category, in category order
//	      Points
//
// All panels share the same axes, so that facets are directly comparable.
package chartspec

import (
	"encoding/json"
	"fmt"

	"github.com/ilhamster/traceviz/tabviz/style"
)

// Kind is the kind of chart.
type Kind int

// Supported chart kinds.
const (
	StackedBar Kind = iota
	Scatter
)

func (k Kind) String() string {
	if k == Scatter {
		return "scatter"
	}
	return "stackedBar"
}

// MarshalJSON marshals a Kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// AxisKind describes an axis' domain.
type AxisKind int

// Supported axis kinds.
const (
	// A discrete axis of labeled bands, such as time buckets.
	CategoryAxis AxisKind = iota
	// A continuous numeric axis.
	NumericAxis
	// A continuous date axis, with coordinates in days since the Unix epoch.
	TimeAxis
	// A discrete axis of string values placed at integer coordinates.
	OrdinalAxis
)

func (ak AxisKind) String() string {
	switch ak {
	case NumericAxis:
		return "numeric"
	case TimeAxis:
		return "time"
	case OrdinalAxis:
		return "ordinal"
	default:
		return "category"
	}
}

// MarshalJSON marshals an AxisKind as its name.
func (ak AxisKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(ak.String())
}

// Tick is a labeled position along an axis.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Axis describes a chart axis.  Under CategoryAxis, Labels holds the band
// labels, and band i is centered at coordinate i.  Under the other kinds,
// Min and Max bound the axis' coordinates.
type Axis struct {
	Title  string   `json:"title"`
	Kind   AxisKind `json:"kind"`
	Labels []string `json:"labels,omitempty"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Ticks  []Tick   `json:"ticks,omitempty"`
}

// Point is a single bar segment or scatter point.  For bar segments, X is the
// band index, Base the bottom of the segment, and Y its height; the segment's
// label, if any, is drawn at LabelY.  XText and YText hold the display text of
// the point's values.
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Base   float64 `json:"base,omitempty"`
	Label  string  `json:"label,omitempty"`
	LabelY float64 `json:"labelY,omitempty"`
	XText  string  `json:"xText,omitempty"`
	YText  string  `json:"yText,omitempty"`
}

// Series is the data of a single category within a panel.
type Series struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Points   []Point `json:"points"`
}

// Panel is a single sub-chart.  Facet is empty for unfaceted charts.
type Panel struct {
	Facet  string   `json:"facet,omitempty"`
	Series []Series `json:"series"`
}

// LayoutMode describes how panels are arranged.
type LayoutMode int

// Supported layout modes.
const (
	// One row per panel.
	Grid LayoutMode = iota
	// WrapColumns columns, with as many rows as needed.
	Wrap
)

// WrapColumns is the column count of the Wrap layout.
const WrapColumns = 3

func (lm LayoutMode) String() string {
	if lm == Wrap {
		return "wrap"
	}
	return "grid"
}

// MarshalJSON marshals a LayoutMode as its name.
func (lm LayoutMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(lm.String())
}

// ParseLayoutMode parses a layout mode name.  The empty string is Grid.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch s {
	case "", "grid":
		return Grid, nil
	case "wrap":
		return Wrap, nil
	default:
		return 0, fmt.Errorf("unknown facet layout '%s'", s)
	}
}

// NewLayout returns the layout of n panels under the specified mode.
func NewLayout(mode LayoutMode, n int) Layout {
	if n < 1 {
		n = 1
	}
	if mode == Wrap {
		return Layout{Mode: mode, Rows: (n + WrapColumns - 1) / WrapColumns, Cols: WrapColumns}
	}
	return Layout{Mode: mode, Rows: n, Cols: 1}
}

// Layout is the arrangement of panels: Rows by Cols cells, filled row by row.
type Layout struct {
	Mode LayoutMode `json:"mode"`
	Rows int        `json:"rows"`
	Cols int        `json:"cols"`
}

// Position is a legend position.
type Position int

// Supported legend positions.
const (
	Right Position = iota
	Top
	Bottom
	Left
)

func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "right"
	}
}

// MarshalJSON marshals a Position as its name.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// ParsePosition parses a legend position name.  The empty string is Right.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "", "right":
		return Right, nil
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	default:
		return 0, fmt.Errorf("unknown legend position '%s'", s)
	}
}

// Horizontal returns true if a legend at the receiving position is laid out
// horizontally.
func (p Position) Horizontal() bool {
	return p == Top || p == Bottom
}

// Legend describes the chart legend.  Top and bottom legends are horizontal
// and centered; left and right legends are vertical and anchored to their
// side.
type Legend struct {
	Visible  bool     `json:"visible"`
	Position Position `json:"position"`
	Orient   string   `json:"orient"`
	Align    string   `json:"align"`
}

// NewLegend returns a Legend at the specified position.
func NewLegend(visible bool, pos Position) Legend {
	l := Legend{
		Visible:  visible,
		Position: pos,
		Orient:   "vertical",
		Align:    pos.String(),
	}
	if pos.Horizontal() {
		l.Orient, l.Align = "horizontal", "center"
	}
	return l
}

// ChartSpec describes a chart.
type ChartSpec struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title,omitempty"`
	Subtitle    string `json:"subtitle,omitempty"`
	XField      string `json:"xField"`
	YField      string `json:"yField,omitempty"`
	ColorField  string `json:"colorField,omitempty"`
	FacetField  string `json:"facetField,omitempty"`
	Metric      string `json:"metric,omitempty"`
	Granularity string `json:"granularity,omitempty"`
	// The displayed categories, in order.
	Categories []string          `json:"categories"`
	ColorMap   map[string]string `json:"colorMap"`
	XAxis      Axis              `json:"xAxis"`
	YAxis      Axis              `json:"yAxis"`
	Layout     Layout            `json:"layout"`
	Panels     []Panel           `json:"panels"`
	Legend     Legend            `json:"legend"`
	Style      style.Style       `json:"style"`
}

