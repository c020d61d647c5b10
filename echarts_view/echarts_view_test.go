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

package echartsview

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/pipeline"
	"github.com/ilhamster/traceviz/tabviz/style"
	testutil "github.com/ilhamster/traceviz/tabviz/test_util"
)

const sitesCSV = `
date,species,site
2020-01-15,alpha,north
2020-03-01,beta,south
2021-02-10,alpha,north
`

func TestRender(t *testing.T) {
	for _, test := range []struct {
		description string
		mutate      func(*pipeline.State)
		wantCharts  int
		wantText    []string
	}{{
		description: "stacked bars",
		mutate:      func(s *pipeline.State) {},
		wantCharts:  1,
		wantText:    []string{"Specimens", "alpha", "beta", "2020", "2021"},
	}, {
		description: "faceted scatter",
		mutate: func(s *pipeline.State) {
			s.Type, s.Y, s.Facet = pipeline.Scatter, "species", "site"
			s.FacetLayout = chartspec.Wrap
			s.Style.PointShape = style.Diamond
		},
		wantCharts: 2,
		wantText:   []string{"north", "south", "diamond", "toISOString"},
	}, {
		description: "proportion bars",
		mutate: func(s *pipeline.State) {
			s.Type = pipeline.Proportion
		},
		wantCharts: 1,
		wantText:   []string{"proportion", "Math.round(v * 100)"},
	}} {
		t.Run(test.description, func(t *testing.T) {
			state := pipeline.DefaultState()
			state.Title, state.X, state.Color = "Specimens", "date", "species"
			test.mutate(&state)
			res, err := pipeline.Run(context.Background(), testutil.TableFromCSV(t, sitesCSV), state)
			if err != nil {
				t.Fatalf("Run() yielded unexpected error %s", err)
			}
			if got := len(Charts(res.Spec, 900, 600)); got != test.wantCharts {
				t.Errorf("Charts() => %d charts, want %d", got, test.wantCharts)
			}
			var buf bytes.Buffer
			if err := Render(&buf, res.Spec, 900, 600); err != nil {
				t.Fatalf("Render() yielded unexpected error %s", err)
			}
			for _, want := range test.wantText {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Render() output lacks '%s'", want)
				}
			}
		})
	}
}

func TestAxisLabel(t *testing.T) {
	timeAxis := chartspec.Axis{Kind: chartspec.TimeAxis, Min: 18262, Max: 18628}
	numericAxis := chartspec.Axis{Kind: chartspec.NumericAxis, Max: 1}
	categoryAxis := chartspec.Axis{Kind: chartspec.CategoryAxis, Labels: []string{"2020"}}
	for _, test := range []struct {
		description string
		got         types.FuncStr
		want        types.FuncStr
	}{
		{"time x axis", xAxisOpts(timeAxis, style.Default()).AxisLabel.Formatter, dateFormatter},
		{"time y axis", yAxisOpts(timeAxis, "", style.Default()).AxisLabel.Formatter, dateFormatter},
		{"count y axis", yAxisOpts(numericAxis, aggregator.Count.String(), style.Default()).AxisLabel.Formatter, ""},
		{"proportion y axis", yAxisOpts(numericAxis, aggregator.Proportion.String(), style.Default()).AxisLabel.Formatter, percentFormatter},
		{"category x axis", xAxisOpts(categoryAxis, style.Default()).AxisLabel.Formatter, ""},
	} {
		t.Run(test.description, func(t *testing.T) {
			if diff := cmp.Diff(test.want, test.got); diff != "" {
				t.Errorf("axis label formatter => %q, diff (-want +got) %s", test.got, diff)
			}
		})
	}
}

func TestLegendOpts(t *testing.T) {
	for _, test := range []struct {
		pos                 chartspec.Position
		wantLeft, wantRight string
		wantTop, wantBottom string
		wantOrient          string
	}{
		{chartspec.Right, "", legendInset, "middle", "", "vertical"},
		{chartspec.Left, legendInset, "", "middle", "", "vertical"},
		{chartspec.Top, "center", "", legendInset, "", "horizontal"},
		{chartspec.Bottom, "center", "", "", legendInset, "horizontal"},
	} {
		got := legendOpts(chartspec.NewLegend(true, test.pos), style.Default())
		if got.Left != test.wantLeft || got.Right != test.wantRight || got.Top != test.wantTop || got.Bottom != test.wantBottom || got.Orient != test.wantOrient {
			t.Errorf("legendOpts(%s) => %+v", test.pos, got)
		}
	}
}

func TestPanelSize(t *testing.T) {
	w, h := panelSize(chartspec.NewLayout(chartspec.Wrap, 4), 900, 600)
	if diff := cmp.Diff([]string{"300px", "300px"}, []string{w, h}); diff != "" {
		t.Errorf("panelSize() diff (-want +got) %s", diff)
	}
}
