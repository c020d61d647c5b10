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

// Package continuousaxis provides helpers for defining continuous axes.  An
// axis has a title, a kind which describes its domain, minimum and maximum
// extents along that domain, and a set of labeled ticks.
//
// Extents are widened to 'nice' round values, so that the first and last
// ticks fall on the axis' ends.  Time axes use coordinates in days since the
// Unix epoch.
package continuousaxis

import (
	"math"
	"strconv"
	"time"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
)

// targetTicks is the approximate number of intervals between ticks.
const targetTicks = 5

const secondsPerDay = 24 * 60 * 60

// niceStep returns a round step, 1, 2, or 5 times a power of ten, dividing
// span into about targetTicks intervals.
func niceStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	raw := span / targetTicks
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func decimals(step float64) int {
	d := -int(math.Floor(math.Log10(step)))
	if d < 0 {
		return 0
	}
	return d
}

// extent returns the minimum and maximum of the provided values, or ok=false
// if there are none.
func extent(vals ...float64) (min, max float64, ok bool) {
	min, max = math.MaxFloat64, -math.MaxFloat64
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		min, max, ok = math.Min(min, v), math.Max(max, v), true
	}
	return min, max, ok
}

// ticks widens [min, max] to multiples of step and returns the widened
// extents and the tick positions between them.
func ticks(min, max, step float64) (lo, hi float64, positions []float64) {
	lo, hi = math.Floor(min/step)*step, math.Ceil(max/step)*step
	if hi == lo {
		hi = lo + step
	}
	n := int(math.Round((hi - lo) / step))
	for i := 0; i <= n; i++ {
		positions = append(positions, lo+float64(i)*step)
	}
	return lo, hi, positions
}

func newAxis(title string, kind chartspec.AxisKind, min, max, step float64, format func(float64) string) chartspec.Axis {
	lo, hi, positions := ticks(min, max, step)
	ret := chartspec.Axis{
		Title: title,
		Kind:  kind,
		Min:   lo,
		Max:   hi,
	}
	for _, pos := range positions {
		ret.Ticks = append(ret.Ticks, chartspec.Tick{Value: pos, Label: format(pos)})
	}
	return ret
}

// NewDoubleAxis returns a new numeric axis with the specified title.  Its
// extents cover the lowest and highest of the provided extents.
func NewDoubleAxis(title string, extents ...float64) chartspec.Axis {
	min, max, ok := extent(extents...)
	if !ok {
		min, max = 0, 1
	}
	if min == max {
		min, max = min-1, max+1
	}
	step := niceStep(max - min)
	d := decimals(step)
	return newAxis(title, chartspec.NumericAxis, min, max, step, func(v float64) string {
		return strconv.FormatFloat(v, 'f', d, 64)
	})
}

// NewCountAxis returns a new numeric axis spanning zero to at least max,
// with whole-number ticks.
func NewCountAxis(title string, max float64) chartspec.Axis {
	if max < 1 {
		max = 1
	}
	step := math.Max(1, niceStep(max))
	return newAxis(title, chartspec.NumericAxis, 0, max, step, func(v float64) string {
		return strconv.FormatFloat(v, 'f', 0, 64)
	})
}

// NewProportionAxis returns a new numeric axis spanning zero to one, with
// ticks labeled as percentages.
func NewProportionAxis(title string) chartspec.Axis {
	return newAxis(title, chartspec.NumericAxis, 0, 1, .25, func(v float64) string {
		return strconv.Itoa(int(math.Round(v*100))) + "%"
	})
}

// Day returns the coordinate of t on a time axis: fractional days since the
// Unix epoch.
func Day(t time.Time) float64 {
	return float64(t.Unix()) / secondsPerDay
}

// TimeOf returns the time at the specified time axis coordinate.
func TimeOf(day float64) time.Time {
	return time.Unix(int64(math.Round(day*secondsPerDay)), 0).UTC()
}

// NewTimestampAxis returns a new time axis with the specified title.  Its
// extents cover the earliest and latest of the provided extents, and its
// ticks are labeled with dates.
func NewTimestampAxis(title string, extents ...time.Time) chartspec.Axis {
	days := make([]float64, len(extents))
	for idx, ext := range extents {
		days[idx] = Day(ext)
	}
	min, max, ok := extent(days...)
	if !ok {
		min, max = 0, 1
	}
	if min == max {
		min, max = min-1, max+1
	}
	step := math.Max(1, niceStep(max-min))
	return newAxis(title, chartspec.TimeAxis, min, max, step, func(v float64) string {
		return TimeOf(v).Format(table.DateLayout)
	})
}
