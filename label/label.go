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

// Package label supports labeling chart segments with their values.
package label

import (
	"math"
	"strconv"

	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
)

// Format returns the data label for a segment with the provided value under
// metric m: the integer count, or the proportion as a whole percentage.
// Zero values are unlabeled.
func Format(m aggregator.Metric, value float64) string {
	if value == 0 {
		return ""
	}
	if m == aggregator.Proportion {
		return strconv.Itoa(int(math.Round(value*100))) + "%"
	}
	return strconv.Itoa(int(math.Round(value)))
}

// Midpoint returns the vertical midpoint of a segment spanning
// [base, base+value].
func Midpoint(base, value float64) float64 {
	return base + value/2
}
