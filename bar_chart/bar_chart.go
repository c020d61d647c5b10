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

// Package barchart builds stacked bar chart panels from aggregated rows.
//
// A BarChart is constructed over the buckets and categories shared by all of
// a chart's panels:
//
//	bc := New(buckets, categories, colors, metric)
//
// and then produces one panel per facet:
//
//	panel, total := bc.Panel(facetValue, rows)
//
// Within a panel, each category is one series holding one point per bucket,
// so that all series align band by band.  Segments stack in category order.
// A (bucket, category) pair absent from the rows yields a zero-height,
// unlabeled segment; renderers draw nothing for it.
package barchart

import (
	"math"

	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	"github.com/ilhamster/traceviz/tabviz/category"
	categoryaxis "github.com/ilhamster/traceviz/tabviz/category_axis"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/color"
	continuousaxis "github.com/ilhamster/traceviz/tabviz/continuous_axis"
	"github.com/ilhamster/traceviz/tabviz/label"
)

// BarChart represents a stacked bar chart with one discrete bucket axis and
// one continuous value axis.
type BarChart struct {
	buckets    []aggregator.Bucket
	categories *category.Set
	colors     color.Map
	metric     aggregator.Metric
}

// New returns a new BarChart over the provided buckets, in band order, and
// categories, in stacking order.
func New(buckets []aggregator.Bucket, categories *category.Set, colors color.Map, metric aggregator.Metric) *BarChart {
	return &BarChart{
		buckets:    buckets,
		categories: categories,
		colors:     colors,
		metric:     metric,
	}
}

// XAxis returns the receiver's bucket axis.
func (bc *BarChart) XAxis(title string) chartspec.Axis {
	labels := make([]string, len(bc.buckets))
	for idx, b := range bc.buckets {
		labels[idx] = b.Label
	}
	return categoryaxis.New(title, labels)
}

// YAxis returns the receiver's value axis, spanning at least the specified
// stack total.  Proportion axes always span [0, 1].
func (bc *BarChart) YAxis(title string, maxTotal float64) chartspec.Axis {
	if bc.metric == aggregator.Proportion {
		return continuousaxis.NewProportionAxis(title)
	}
	return continuousaxis.NewCountAxis(title, maxTotal)
}

type segmentKey struct {
	bucket, category string
}

// Panel returns the panel for the provided rows, and the largest stack total
// among its bands.  Rows whose bucket or category the receiver does not know
// are ignored.
func (bc *BarChart) Panel(facet string, rows []aggregator.Row) (chartspec.Panel, float64) {
	values := make(map[segmentKey]float64, len(rows))
	for _, r := range rows {
		values[segmentKey{r.Bucket.Label, r.Category}] = r.Value(bc.metric)
	}
	bases := make([]float64, len(bc.buckets))
	panel := chartspec.Panel{
		Facet:  facet,
		Series: make([]chartspec.Series, 0, bc.categories.Len()),
	}
	for _, cat := range bc.categories.IDs() {
		series := chartspec.Series{
			Category: cat,
			Color:    bc.colors.Of(cat),
			Points:   make([]chartspec.Point, len(bc.buckets)),
		}
		for idx, b := range bc.buckets {
			v := values[segmentKey{b.Label, cat}]
			pt := chartspec.Point{
				X:     float64(idx),
				Y:     v,
				Base:  bases[idx],
				Label: label.Format(bc.metric, v),
				XText: b.Label,
			}
			if pt.Label != "" {
				pt.LabelY = label.Midpoint(pt.Base, v)
			}
			series.Points[idx] = pt
			bases[idx] += v
		}
		panel.Series = append(panel.Series, series)
	}
	maxTotal := 0.0
	for _, total := range bases {
		maxTotal = math.Max(maxTotal, total)
	}
	return panel, maxTotal
}
