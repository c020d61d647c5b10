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

// Package style supports specifying chart styling: opacity, font sizes, and
// scatter point appearance.
//
// A Style holds sizes in points (fonts) or pixels (scatter points).  Styles
// built from user input should be passed through Clamp, which bounds each
// attribute to its supported range and replaces unset attributes with their
// defaults.
package style

import (
	"encoding/json"
	"fmt"
	"math"
)

// PointShape is the shape of a scatter point.
type PointShape int

// Supported point shapes.
const (
	Circle PointShape = iota
	Square
	Triangle
	Diamond
)

func (ps PointShape) String() string {
	switch ps {
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Diamond:
		return "diamond"
	default:
		return "circle"
	}
}

// MarshalJSON marshals a PointShape as its name.
func (ps PointShape) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.String())
}

// ParsePointShape parses a point shape name.  The empty string is Circle.
func ParsePointShape(s string) (PointShape, error) {
	switch s {
	case "", "circle":
		return Circle, nil
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	case "diamond":
		return Diamond, nil
	default:
		return 0, fmt.Errorf("unknown point shape '%s'", s)
	}
}

// Bounds and defaults of Style attributes.
const (
	MinOpacity, MaxOpacity, DefaultOpacity       = 0.1, 1.0, 0.8
	MinTitleSize, MaxTitleSize, DefaultTitleSize = 5, 30, 16
	MinFontSize, MaxFontSize, DefaultFontSize    = 5, 20, 10
	MinPointSize, MaxPointSize, DefaultPointSize = 2, 30, 8
)

// Style defines a chart's styling.
type Style struct {
	// Fill opacity of bars and points, in [0.1, 1].
	Opacity float64 `json:"opacity"`
	// Font sizes, in points.
	TitleSize float64 `json:"titleSize"`
	AxisSize  float64 `json:"axisSize"`
	LabelSize float64 `json:"labelSize"`
	// Scatter point diameter, in pixels.
	PointSize  float64    `json:"pointSize"`
	PointShape PointShape `json:"pointShape"`
}

// Default returns the default Style.
func Default() Style {
	return Style{
		Opacity:    DefaultOpacity,
		TitleSize:  DefaultTitleSize,
		AxisSize:   DefaultFontSize,
		LabelSize:  DefaultFontSize,
		PointSize:  DefaultPointSize,
		PointShape: Circle,
	}
}

func clamp(v, min, max, def float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return math.Max(min, math.Min(max, v))
}

// Clamp returns the receiver with each attribute bounded to its supported
// range.  Zero attributes take their defaults.
func (s Style) Clamp() Style {
	return Style{
		Opacity:    clamp(s.Opacity, MinOpacity, MaxOpacity, DefaultOpacity),
		TitleSize:  clamp(s.TitleSize, MinTitleSize, MaxTitleSize, DefaultTitleSize),
		AxisSize:   clamp(s.AxisSize, MinFontSize, MaxFontSize, DefaultFontSize),
		LabelSize:  clamp(s.LabelSize, MinFontSize, MaxFontSize, DefaultFontSize),
		PointSize:  clamp(s.PointSize, MinPointSize, MaxPointSize, DefaultPointSize),
		PointShape: s.PointShape,
	}
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.0fpx", valPx)
}
