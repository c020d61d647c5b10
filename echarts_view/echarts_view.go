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

// Package echartsview renders ChartSpecs as interactive HTML pages, with one
// ECharts chart per panel.
package echartsview

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/style"
)

const (
	textColor = "#1F2937"
	stackName = "total"
	// The legend's offset from its side.
	legendInset = "10"
)

var symbols = map[style.PointShape]string{
	style.Circle:   "circle",
	style.Square:   "rect",
	style.Triangle: "triangle",
	style.Diamond:  "diamond",
}

func legendOpts(l chartspec.Legend, st style.Style) opts.Legend {
	ret := opts.Legend{
		Show:      opts.Bool(l.Visible),
		Orient:    l.Orient,
		TextStyle: &opts.TextStyle{Color: textColor, FontSize: int(st.LabelSize)},
	}
	switch l.Position {
	case chartspec.Top:
		ret.Top, ret.Left = legendInset, "center"
	case chartspec.Bottom:
		ret.Bottom, ret.Left = legendInset, "center"
	case chartspec.Left:
		ret.Left, ret.Top = legendInset, "middle"
	default:
		ret.Right, ret.Top = legendInset, "middle"
	}
	return ret
}

func axisType(a chartspec.Axis) string {
	switch a.Kind {
	case chartspec.CategoryAxis, chartspec.OrdinalAxis:
		return "category"
	default:
		return "value"
	}
}

// axisLabels returns the labels of a discrete axis.
func axisLabels(a chartspec.Axis) []string {
	if a.Kind == chartspec.CategoryAxis {
		return a.Labels
	}
	ret := make([]string, len(a.Ticks))
	for idx, tick := range a.Ticks {
		ret[idx] = tick.Label
	}
	return ret
}

// Axis label formatters.  Time axis coordinates are days since the Unix
// epoch.
var (
	dateFormatter    = opts.FuncOpts("function (v) { return new Date(v * 86400000).toISOString().slice(0, 10); }")
	percentFormatter = opts.FuncOpts("function (v) { return Math.round(v * 100) + '%'; }")
)

// axisLabel returns the label options of a continuous axis or, if percent is
// true, a proportion axis.
func axisLabel(a chartspec.Axis, percent bool, st style.Style) *opts.AxisLabel {
	ret := &opts.AxisLabel{Color: textColor, FontSize: int(st.AxisSize)}
	switch {
	case a.Kind == chartspec.TimeAxis:
		ret.Formatter = dateFormatter
	case a.Kind == chartspec.NumericAxis && percent:
		ret.Formatter = percentFormatter
	}
	return ret
}

func xAxisOpts(a chartspec.Axis, st style.Style) opts.XAxis {
	ret := opts.XAxis{
		Name:         a.Title,
		NameLocation: "center",
		NameGap:      30,
		Type:         axisType(a),
		AxisLabel:    axisLabel(a, false, st),
	}
	if ret.Type == "category" {
		ret.Data = axisLabels(a)
	} else {
		ret.Min, ret.Max = a.Min, a.Max
	}
	return ret
}

func yAxisOpts(a chartspec.Axis, metric string, st style.Style) opts.YAxis {
	ret := opts.YAxis{
		Name:         a.Title,
		NameLocation: "center",
		NameGap:      50,
		Type:         axisType(a),
		AxisLabel:    axisLabel(a, metric == aggregator.Proportion.String(), st),
	}
	if ret.Type == "category" {
		ret.Data = axisLabels(a)
	} else {
		ret.Min, ret.Max = a.Min, a.Max
	}
	return ret
}

// panelSize returns the pixel size of each panel of a width x height page.
func panelSize(layout chartspec.Layout, width, height int) (string, string) {
	rows, cols := layout.Rows, layout.Cols
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return style.Px(float64(width / cols)), style.Px(float64(height / rows))
}

func globalOpts(spec *chartspec.ChartSpec, panel chartspec.Panel, width, height string) []charts.GlobalOpts {
	st := spec.Style.Clamp()
	title := opts.Title{
		Title:      spec.Title,
		Subtitle:   spec.Subtitle,
		TitleStyle: &opts.TextStyle{Color: textColor, FontSize: int(st.TitleSize)},
	}
	if panel.Facet != "" {
		title.Subtitle = panel.Facet
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			Width:     width,
			Height:    height,
		}),
		charts.WithTitleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(legendOpts(spec.Legend, st)),
		charts.WithXAxisOpts(xAxisOpts(spec.XAxis, st)),
		charts.WithYAxisOpts(yAxisOpts(spec.YAxis, spec.Metric, st)),
	}
}

func itemStyle(color string, st style.Style) opts.ItemStyle {
	return opts.ItemStyle{
		Color:   color,
		Opacity: opts.Float(float32(st.Opacity)),
	}
}

func barPanel(spec *chartspec.ChartSpec, panel chartspec.Panel, width, height string) *charts.Bar {
	st := spec.Style.Clamp()
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(spec, panel, width, height)...)
	bar.SetXAxis(spec.XAxis.Labels)
	for _, series := range panel.Series {
		data := make([]opts.BarData, len(spec.XAxis.Labels))
		for idx := range data {
			data[idx] = opts.BarData{Value: 0}
		}
		for _, p := range series.Points {
			idx := int(p.X)
			if idx < 0 || idx >= len(data) {
				continue
			}
			data[idx] = opts.BarData{
				Name:  p.XText,
				Value: p.Y,
				Label: &opts.Label{
					Show:      opts.Bool(p.Label != ""),
					Color:     textColor,
					FontSize:  float32(st.LabelSize),
					Formatter: types.FuncStr(p.Label),
				},
			}
		}
		bar.AddSeries(series.Category, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: stackName}),
			charts.WithItemStyleOpts(itemStyle(series.Color, st)),
		)
	}
	return bar
}

func scatterPanel(spec *chartspec.ChartSpec, panel chartspec.Panel, width, height string) *charts.Scatter {
	st := spec.Style.Clamp()
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globalOpts(spec, panel, width, height)...)
	for _, series := range panel.Series {
		data := make([]opts.ScatterData, 0, len(series.Points))
		for _, p := range series.Points {
			data = append(data, opts.ScatterData{
				Name:       p.XText + ", " + p.YText,
				Value:      []interface{}{p.X, p.Y},
				Symbol:     symbols[st.PointShape],
				SymbolSize: int(st.PointSize),
			})
		}
		scatter.AddSeries(series.Category, data,
			charts.WithItemStyleOpts(itemStyle(series.Color, st)),
		)
	}
	return scatter
}

// Charts returns one chart per panel of spec, sized to share a width x
// height page.
func Charts(spec *chartspec.ChartSpec, width, height int) []components.Charter {
	w, h := panelSize(spec.Layout, width, height)
	var ret []components.Charter
	for _, panel := range spec.Panels {
		if spec.Kind == chartspec.Scatter {
			ret = append(ret, scatterPanel(spec, panel, w, h))
		} else {
			ret = append(ret, barPanel(spec, panel, w, h))
		}
	}
	return ret
}

// Render writes spec to w as an HTML page of width x height pixels.
func Render(w io.Writer, spec *chartspec.ChartSpec, width, height int) error {
	page := components.NewPage()
	page.PageTitle = spec.Title
	if spec.Layout.Mode == chartspec.Wrap {
		page.SetLayout(components.PageFlexLayout)
	}
	page.AddCharts(Charts(spec, width, height)...)
	return page.Render(w)
}
