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

// Package categoryaxis provides helpers for defining discrete axes: category
// axes of labeled bands, such as time buckets, and ordinal axes placing
// string values at integer coordinates.
//
// Along both, the value at position i is centered at coordinate i, and the
// axis extends half a unit beyond the first and last positions.
package categoryaxis

import (
	"github.com/ilhamster/traceviz/tabviz/category"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
)

func newAxis(title string, kind chartspec.AxisKind, labels []string) chartspec.Axis {
	ret := chartspec.Axis{
		Title:  title,
		Kind:   kind,
		Labels: labels,
		Min:    -.5,
		Max:    float64(len(labels)) - .5,
	}
	for idx, label := range labels {
		ret.Ticks = append(ret.Ticks, chartspec.Tick{Value: float64(idx), Label: label})
	}
	return ret
}

// New returns a new category axis with the specified title and band labels.
func New(title string, labels []string) chartspec.Axis {
	return newAxis(title, chartspec.CategoryAxis, append([]string{}, labels...))
}

// Ordinal places string values at integer positions, in first-seen order.
type Ordinal struct {
	values *category.Set
}

// NewOrdinal returns a new Ordinal over the provided values.
func NewOrdinal(values ...string) *Ordinal {
	return &Ordinal{
		values: category.New(values...),
	}
}

// Position returns the coordinate of the specified value.
func (o *Ordinal) Position(value string) (float64, bool) {
	idx, ok := o.values.Index(value)
	return float64(idx), ok
}

// Axis returns an ordinal axis with the specified title over the receiver's
// values.
func (o *Ordinal) Axis(title string) chartspec.Axis {
	return newAxis(title, chartspec.OrdinalAxis, o.values.IDs())
}
