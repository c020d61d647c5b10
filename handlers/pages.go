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

package handlers

import (
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	"github.com/ilhamster/traceviz/tabviz/category"
	"github.com/ilhamster/traceviz/tabviz/color"
	"github.com/ilhamster/traceviz/tabviz/pipeline"
)

// previewRows is the number of leading rows shown in the data preview.
const previewRows = 5

const pageStyle = `<style>
body { font-family: sans-serif; margin: 1.5em; color: #1F2937; }
.error { color: #B91C1C; }
.note { color: #6B7280; }
form.options { display: grid; grid-template-columns: repeat(4, auto); gap: .4em 1em; align-items: center; max-width: 70em; }
table.preview { border-collapse: collapse; margin: 1em 0; }
table.preview td, table.preview th { border: 1px solid #E5E7EB; padding: .2em .6em; }
</style>`

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>TabViz</title>` + pageStyle + `</head>
<body>
<h1>TabViz</h1>
{{if .Message}}<p class="error">{{.Message}}</p>{{end}}
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.txt,.xlsx,.xlsm,.xls">
<button type="submit">Upload</button>
</form>
<p class="note">CSV and Excel files are supported.</p>
</body>
</html>`

const sessionHTML = `{{define "options"}}{{range .}}{{if .Selected}}<option value="{{.Value}}" selected>{{.Label}}</option>{{else}}<option value="{{.Value}}">{{.Label}}</option>{{end}}{{end}}{{end}}<!DOCTYPE html>
<html>
<head><title>TabViz: {{.FileName}}</title>` + pageStyle + `</head>
<body>
<h1>{{.FileName}}</h1>
<p class="note">{{.RowCount}} rows. <a href="/">Upload another file</a></p>
<h2>Columns</h2>
<ul>{{range .Schema}}<li>{{.Name}} ({{.Type}})</li>{{end}}</ul>
<h2>Preview</h2>
<table class="preview">
<tr>{{range .Preview.Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Preview.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
<h2>Chart</h2>
<form class="options" method="get" action="{{.Action}}">
<label>Title</label><input name="title" value="{{.Title}}">
<label>Subtitle</label><input name="subtitle" value="{{.Subtitle}}">
<label>Chart type</label><select name="kind">{{template "options" .Kinds}}</select>
<label>X axis</label><select name="x">{{template "options" .XColumns}}</select>
<label>Y axis (scatter)</label><select name="y">{{template "options" .YColumns}}</select>
<label>Color by</label><select name="color">{{template "options" .ColorColumns}}</select>
<label>Facet by</label><select name="facet">{{template "options" .FacetColumns}}</select>
<label>Facet layout</label><select name="facet_layout">{{template "options" .Layouts}}</select>
<label>Time grouping</label><select name="granularity">{{template "options" .Granularities}}</select>
<label>From</label><input type="date" name="date_start" value="{{.DateStart}}">
<label>To</label><input type="date" name="date_end" value="{{.DateEnd}}">
<label>Y minimum</label><input name="y_min" value="{{.YMin}}">
<label>Y maximum</label><input name="y_max" value="{{.YMax}}">
<label>Legend</label><select name="legend">{{template "options" .Legend}}</select>
<label>Legend position</label><select name="legend_pos">{{template "options" .LegendPositions}}</select>
<label>Opacity</label><input type="number" name="opacity" min="0.1" max="1" step="0.05" value="{{.Opacity}}">
<label>Title size</label><input type="number" name="title_size" min="5" max="30" value="{{.TitleSize}}">
<label>Axis size</label><input type="number" name="axis_size" min="5" max="20" value="{{.AxisSize}}">
<label>Label size</label><input type="number" name="label_size" min="5" max="20" value="{{.LabelSize}}">
<label>Point size</label><input type="number" name="point_size" min="2" max="30" value="{{.PointSize}}">
<label>Point shape</label><select name="point_shape">{{template "options" .Shapes}}</select>
{{if .Categories}}<input type="hidden" name="cats_for" value="{{.CatsFor}}">
<fieldset style="grid-column: 1 / -1"><legend>Categories</legend>
{{range .Categories}}<label>{{if .Checked}}<input type="checkbox" name="cat" value="{{.Name}}" checked>{{else}}<input type="checkbox" name="cat" value="{{.Name}}">{{end}} {{.Name}}</label>
<input type="color" name="{{.Field}}" value="{{.Color}}">
{{end}}</fieldset>{{end}}
<button type="submit">Update</button>
</form>
{{if .Message}}{{if .Error}}<p class="error">{{.Message}}</p>{{else}}<p class="note">{{.Message}}</p>{{end}}{{end}}
{{if .HasChart}}<p><img src="{{.ChartURL}}" alt="chart"></p>
<p><a href="{{.ViewURL}}">Interactive view</a> | <a href="{{.SpecURL}}">Chart spec (JSON)</a> | <a href="{{.ExportPNGURL}}">Download PNG</a> | <a href="{{.ExportJPEGURL}}">Download JPEG</a></p>{{end}}
</body>
</html>`

var (
	indexTemplate   = template.Must(template.New("index").Parse(indexHTML))
	sessionTemplate = template.Must(template.New("session").Parse(sessionHTML))
)

type indexPage struct {
	Message string
}

type option struct {
	Value, Label string
	Selected     bool
}

func options(selected string, values ...string) []option {
	ret := make([]option, len(values))
	for idx, v := range values {
		ret[idx] = option{Value: v, Label: v, Selected: v == selected}
	}
	return ret
}

// columnOptions returns an option per column of tbl, preceded by a 'none'
// option if optional is true.
func columnOptions(tbl *table.Table, selected string, optional bool) []option {
	var ret []option
	if optional {
		ret = append(ret, option{Value: "", Label: "(none)", Selected: selected == ""})
	}
	for _, col := range tbl.Columns() {
		ret = append(ret, option{Value: col.Name, Label: col.Name, Selected: col.Name == selected})
	}
	return ret
}

type schemaEntry struct {
	Name, Type string
}

type preview struct {
	Header []string
	Rows   [][]string
}

type categoryOption struct {
	Name    string
	Field   safehtml.Identifier
	Color   string
	Checked bool
}

type sessionPage struct {
	FileName string
	RowCount int
	Schema   []schemaEntry
	Preview  preview
	Action   string

	Title, Subtitle                                string
	Kinds, XColumns, YColumns                      []option
	ColorColumns, FacetColumns, Layouts            []option
	Granularities, Legend, LegendPositions, Shapes []option
	DateStart, DateEnd, YMin, YMax                 string
	Opacity, TitleSize, AxisSize, LabelSize        string
	PointSize                                      string
	CatsFor                                        string
	Categories                                     []categoryOption

	Message  string
	Error    bool
	HasChart bool

	ChartURL, ViewURL, SpecURL, ExportPNGURL, ExportJPEGURL string
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// newSessionPage returns the page for a session, with its options form
// populated from state.  Raw form values, such as dates, are echoed as given.
func newSessionPage(sess *Session, state pipeline.State, raw map[string]string) *sessionPage {
	tbl := sess.Table
	st := state.Style.Clamp()
	legend := "on"
	if !state.Legend.Visible {
		legend = "off"
	}
	p := &sessionPage{
		FileName:        sess.FileName,
		RowCount:        tbl.Len(),
		Action:          sessionPath(sess.ID, ""),
		Title:           state.Title,
		Subtitle:        state.Subtitle,
		Kinds:           options(state.Type.String(), "count", "proportion", "scatter"),
		XColumns:        columnOptions(tbl, state.X, false),
		YColumns:        columnOptions(tbl, state.Y, true),
		ColorColumns:    columnOptions(tbl, state.Color, true),
		FacetColumns:    columnOptions(tbl, state.Facet, true),
		Layouts:         options(state.FacetLayout.String(), "grid", "wrap"),
		Granularities:   options(state.Granularity.String(), "year", "month", "none"),
		Legend:          options(legend, "on", "off"),
		LegendPositions: options(state.Legend.Position.String(), "right", "top", "bottom", "left"),
		Shapes:          options(st.PointShape.String(), "circle", "square", "triangle", "diamond"),
		DateStart:       raw[dateStartKey],
		DateEnd:         raw[dateEndKey],
		YMin:            raw[yMinKey],
		YMax:            raw[yMaxKey],
		Opacity:         formatFloat(st.Opacity),
		TitleSize:       formatFloat(st.TitleSize),
		AxisSize:        formatFloat(st.AxisSize),
		LabelSize:       formatFloat(st.LabelSize),
		PointSize:       formatFloat(st.PointSize),
	}
	for _, col := range tbl.Columns() {
		typ := col.Type.String()
		if col.Type == table.Date {
			typ += ", " + col.Resolution.String()
		}
		p.Schema = append(p.Schema, schemaEntry{Name: col.Name, Type: typ})
		p.Preview.Header = append(p.Preview.Header, col.Name)
	}
	head := tbl.Head(previewRows)
	for row := 0; row < head.Len(); row++ {
		var cells []string
		for _, v := range head.Row(row) {
			cells = append(cells, v.String())
		}
		p.Preview.Rows = append(p.Preview.Rows, cells)
	}
	if colorRef, err := tbl.ResolveOptional(state.Color); err == nil && colorRef.Valid() {
		all := category.FromColumn(tbl, colorRef)
		colors := color.Assign(color.Default, all, all, state.Colors)
		p.CatsFor = state.Color
		for _, cat := range all.IDs() {
			p.Categories = append(p.Categories, categoryOption{
				Name:    cat,
				Field:   colorField(cat),
				Color:   colors.Of(cat),
				Checked: state.Categories == nil || state.Categories.Contains(cat),
			})
		}
	}
	return p
}
