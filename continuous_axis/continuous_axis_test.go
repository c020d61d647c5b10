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

package continuousaxis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAxis(t *testing.T) {
	for _, test := range []struct {
		description string
		axis        chartspec.Axis
		want        chartspec.Axis
	}{{
		description: "double",
		axis:        NewDoubleAxis("score", 1, 9.5),
		want: chartspec.Axis{
			Title: "score",
			Kind:  chartspec.NumericAxis,
			Min:   0,
			Max:   10,
			Ticks: []chartspec.Tick{
				{Value: 0, Label: "0"},
				{Value: 2, Label: "2"},
				{Value: 4, Label: "4"},
				{Value: 6, Label: "6"},
				{Value: 8, Label: "8"},
				{Value: 10, Label: "10"},
			},
		},
	}, {
		description: "double with a single extent",
		axis:        NewDoubleAxis("score", 5),
		want: chartspec.Axis{
			Title: "score",
			Kind:  chartspec.NumericAxis,
			Min:   4,
			Max:   6,
			Ticks: []chartspec.Tick{
				{Value: 4, Label: "4.0"},
				{Value: 4.5, Label: "4.5"},
				{Value: 5, Label: "5.0"},
				{Value: 5.5, Label: "5.5"},
				{Value: 6, Label: "6.0"},
			},
		},
	}, {
		description: "count",
		axis:        NewCountAxis("count", 3),
		want: chartspec.Axis{
			Title: "count",
			Kind:  chartspec.NumericAxis,
			Min:   0,
			Max:   3,
			Ticks: []chartspec.Tick{
				{Value: 0, Label: "0"},
				{Value: 1, Label: "1"},
				{Value: 2, Label: "2"},
				{Value: 3, Label: "3"},
			},
		},
	}, {
		description: "proportion",
		axis:        NewProportionAxis("proportion"),
		want: chartspec.Axis{
			Title: "proportion",
			Kind:  chartspec.NumericAxis,
			Min:   0,
			Max:   1,
			Ticks: []chartspec.Tick{
				{Value: 0, Label: "0%"},
				{Value: .25, Label: "25%"},
				{Value: .5, Label: "50%"},
				{Value: .75, Label: "75%"},
				{Value: 1, Label: "100%"},
			},
		},
	}, {
		description: "timestamp",
		axis:        NewTimestampAxis("date", date(2020, 1, 5), date(2020, 1, 1), date(2020, 1, 9)),
		want: chartspec.Axis{
			Title: "date",
			Kind:  chartspec.TimeAxis,
			Min:   Day(date(2020, 1, 1)),
			Max:   Day(date(2020, 1, 9)),
			Ticks: []chartspec.Tick{
				{Value: Day(date(2020, 1, 1)), Label: "2020-01-01"},
				{Value: Day(date(2020, 1, 3)), Label: "2020-01-03"},
				{Value: Day(date(2020, 1, 5)), Label: "2020-01-05"},
				{Value: Day(date(2020, 1, 7)), Label: "2020-01-07"},
				{Value: Day(date(2020, 1, 9)), Label: "2020-01-09"},
			},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if diff := cmp.Diff(test.want, test.axis); diff != "" {
				t.Errorf("axis => %v, diff (-want +got) %s", test.axis, diff)
			}
		})
	}
}

func TestDayRoundTrip(t *testing.T) {
	d := date(2021, 2, 10)
	if got := TimeOf(Day(d)); !got.Equal(d) {
		t.Errorf("TimeOf(Day(%v)) => %v", d, got)
	}
}
