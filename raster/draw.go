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

package raster

import (
	"math"
	"strings"

	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/style"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	margin  = 16
	gap     = 12
	swatch  = 12
	tickLen = 4
	// The fraction of a band covered by its bar.
	barFill = .7
)

var (
	ink      = drawing.ColorFromHex("1F2937")
	muted    = drawing.ColorFromHex("6B7280")
	gridline = drawing.ColorFromHex("E5E7EB")
)

// colorOf returns the '#RRGGBB' color hex at the specified opacity.
func colorOf(hex string, opacity float64) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#")).WithAlpha(uint8(math.Round(opacity * 255)))
}

type box struct {
	left, top, right, bottom int
}

func (b box) width() int {
	return b.right - b.left
}

func (b box) height() int {
	return b.bottom - b.top
}

func (b box) centerX() int {
	return b.left + b.width()/2
}

// cells divides area into the cells of layout, returning the first n in
// row-major order.
func cells(area box, layout chartspec.Layout, n int) []box {
	rows, cols := layout.Rows, layout.Cols
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	cellW := (area.width() - gap*(cols-1)) / cols
	cellH := (area.height() - gap*(rows-1)) / rows
	var ret []box
	for idx := 0; idx < n && idx/cols < rows; idx++ {
		row, col := idx/cols, idx%cols
		left, top := area.left+col*(cellW+gap), area.top+row*(cellH+gap)
		ret = append(ret, box{left, top, left + cellW, top + cellH})
	}
	return ret
}

// labelStride returns k such that drawing every k-th of the labels, with the
// provided widths, fits within avail pixels.
func labelStride(widths []int, avail int) int {
	need := 0
	for _, w := range widths {
		need += w + gap
	}
	if avail <= 0 || need <= avail {
		return 1
	}
	return (need + avail - 1) / avail
}

// scale maps axis coordinates onto a pixel range.
type scale struct {
	min, max float64
	from, to int
}

func newScale(a chartspec.Axis, from, to int) scale {
	min, max := a.Min, a.Max
	if !(max > min) {
		min, max = min-1, min+1
	}
	return scale{min, max, from, to}
}

func (s scale) at(v float64) int {
	return s.from + int(math.Round((v-s.min)/(s.max-s.min)*float64(s.to-s.from)))
}

// perUnit returns the pixel length of one axis unit.
func (s scale) perUnit() float64 {
	return math.Abs(float64(s.to-s.from)) / (s.max - s.min)
}

type drawer struct {
	r    chart.Renderer
	spec *chartspec.ChartSpec
	st   style.Style
}

func (d *drawer) draw(width, height int) {
	d.fillRect(box{0, 0, width, height}, drawing.ColorWhite)
	area := box{margin, margin, width - margin, height - margin}
	area = d.drawTitles(area)
	area = d.drawLegend(area)
	for idx, cell := range cells(area, d.spec.Layout, len(d.spec.Panels)) {
		d.drawPanel(cell, d.spec.Panels[idx])
	}
}

func (d *drawer) setText(size float64, c drawing.Color) {
	d.r.SetFontSize(size)
	d.r.SetFontColor(c)
}

func (d *drawer) measure(s string) (int, int) {
	b := d.r.MeasureText(s)
	return b.Width(), b.Height()
}

// centered draws s horizontally centered on cx, with its baseline at y.
func (d *drawer) centered(s string, cx, y int) {
	w, _ := d.measure(s)
	d.r.Text(s, cx-w/2, y)
}

func (d *drawer) fillRect(b box, c drawing.Color) {
	d.polygon(c, [2]int{b.left, b.top}, [2]int{b.right, b.top}, [2]int{b.right, b.bottom}, [2]int{b.left, b.bottom})
}

func (d *drawer) polygon(c drawing.Color, pts ...[2]int) {
	d.r.SetFillColor(c)
	d.r.MoveTo(pts[0][0], pts[0][1])
	for _, pt := range pts[1:] {
		d.r.LineTo(pt[0], pt[1])
	}
	d.r.Close()
	d.r.Fill()
}

func (d *drawer) line(c drawing.Color, x0, y0, x1, y1 int) {
	d.r.SetStrokeColor(c)
	d.r.SetStrokeWidth(1)
	d.r.MoveTo(x0, y0)
	d.r.LineTo(x1, y1)
	d.r.Stroke()
}

func (d *drawer) drawTitles(area box) box {
	drawn := false
	for _, t := range []struct {
		text  string
		size  float64
		color drawing.Color
	}{
		{d.spec.Title, d.st.TitleSize, ink},
		{d.spec.Subtitle, d.st.TitleSize * .75, muted},
	} {
		if t.text == "" {
			continue
		}
		d.setText(t.size, t.color)
		_, h := d.measure(t.text)
		d.centered(t.text, area.centerX(), area.top+h)
		area.top += h + gap/2
		drawn = true
	}
	if drawn {
		area.top += gap / 2
	}
	return area
}

// drawLegend draws the legend, if any, at its position within area, and
// returns the remainder of area.
func (d *drawer) drawLegend(area box) box {
	legend := d.spec.Legend
	if !legend.Visible || len(d.spec.Categories) == 0 {
		return area
	}
	d.setText(d.st.LabelSize, ink)
	widths := make([]int, len(d.spec.Categories))
	lineH := swatch
	for idx, cat := range d.spec.Categories {
		w, h := d.measure(cat)
		widths[idx] = swatch + 4 + w
		if h > lineH {
			lineH = h
		}
	}
	lineH += 4
	if legend.Position.Horizontal() {
		// Wrap entries into centered lines.
		var lines [][]int
		var line []int
		lineW := 0
		for idx, w := range widths {
			if len(line) > 0 && lineW+gap+w > area.width() {
				lines, line, lineW = append(lines, line), nil, 0
			}
			if len(line) > 0 {
				lineW += gap
			}
			line, lineW = append(line, idx), lineW+w
		}
		lines = append(lines, line)
		totalH := len(lines) * lineH
		y := area.top
		if legend.Position == chartspec.Bottom {
			y = area.bottom - totalH
			area.bottom -= totalH + gap
		} else {
			area.top += totalH + gap
		}
		for _, line := range lines {
			lineW := gap * (len(line) - 1)
			for _, idx := range line {
				lineW += widths[idx]
			}
			x := area.centerX() - lineW/2
			for _, idx := range line {
				d.drawLegendEntry(d.spec.Categories[idx], x, y, lineH)
				x += widths[idx] + gap
			}
			y += lineH
		}
		return area
	}
	colW := 0
	for _, w := range widths {
		if w > colW {
			colW = w
		}
	}
	x := area.right - colW
	if legend.Position == chartspec.Left {
		x = area.left
		area.left += colW + gap
	} else {
		area.right -= colW + gap
	}
	y := area.top + (area.height()-len(widths)*lineH)/2
	if y < area.top {
		y = area.top
	}
	for _, cat := range d.spec.Categories {
		d.drawLegendEntry(cat, x, y, lineH)
		y += lineH
	}
	return area
}

func (d *drawer) drawLegendEntry(cat string, x, y, lineH int) {
	top := y + (lineH-swatch)/2
	d.fillRect(box{x, top, x + swatch, top + swatch}, colorOf(d.spec.ColorMap[cat], d.st.Opacity))
	d.setText(d.st.LabelSize, ink)
	_, h := d.measure(cat)
	d.r.Text(cat, x+swatch+4, y+(lineH+h)/2-1)
}

func (d *drawer) drawPanel(cell box, panel chartspec.Panel) {
	if panel.Facet != "" {
		d.setText(d.st.LabelSize+2, ink)
		_, h := d.measure(panel.Facet)
		d.centered(panel.Facet, cell.centerX(), cell.top+h)
		cell.top += h + 6
	}
	xAxis, yAxis := d.spec.XAxis, d.spec.YAxis
	d.setText(d.st.AxisSize, muted)
	_, textH := d.measure("0")
	yLabelW := 0
	for _, tick := range yAxis.Ticks {
		if w, _ := d.measure(tick.Label); w > yLabelW {
			yLabelW = w
		}
	}
	left := yLabelW + tickLen + 4
	if yAxis.Title != "" {
		left += textH + 6
	}
	bottom := textH + tickLen + 4
	if xAxis.Title != "" {
		bottom += textH + 6
	}
	plot := box{cell.left + left, cell.top + textH/2, cell.right - 8, cell.bottom - bottom}
	if plot.width() <= 0 || plot.height() <= 0 {
		return
	}
	xs, ys := newScale(xAxis, plot.left, plot.right), newScale(yAxis, plot.bottom, plot.top)
	for _, tick := range yAxis.Ticks {
		py := ys.at(tick.Value)
		d.line(gridline, plot.left, py, plot.right, py)
		w, _ := d.measure(tick.Label)
		d.r.Text(tick.Label, plot.left-tickLen-4-w, py+textH/2)
	}
	d.line(muted, plot.left, plot.top, plot.left, plot.bottom)
	d.line(muted, plot.left, plot.bottom, plot.right, plot.bottom)
	widths := make([]int, len(xAxis.Ticks))
	for idx, tick := range xAxis.Ticks {
		widths[idx], _ = d.measure(tick.Label)
	}
	stride := labelStride(widths, plot.width())
	for idx, tick := range xAxis.Ticks {
		px := xs.at(tick.Value)
		d.line(muted, px, plot.bottom, px, plot.bottom+tickLen)
		if idx%stride == 0 {
			d.centered(tick.Label, px, plot.bottom+tickLen+4+textH)
		}
	}
	if xAxis.Title != "" {
		d.centered(xAxis.Title, plot.centerX(), cell.bottom-2)
	}
	if yAxis.Title != "" {
		w, _ := d.measure(yAxis.Title)
		d.r.SetTextRotation(-math.Pi / 2)
		d.r.Text(yAxis.Title, cell.left+textH, plot.top+plot.height()/2+w/2)
		d.r.ClearTextRotation()
	}
	if d.spec.Kind == chartspec.Scatter {
		d.drawPoints(panel, xs, ys)
		return
	}
	d.drawBars(panel, xs, ys)
}

func (d *drawer) drawBars(panel chartspec.Panel, xs, ys scale) {
	barW := int(xs.perUnit() * barFill)
	if barW < 1 {
		barW = 1
	}
	for _, series := range panel.Series {
		c := colorOf(series.Color, d.st.Opacity)
		for _, p := range series.Points {
			if p.Y <= 0 {
				continue
			}
			x := xs.at(p.X) - barW/2
			d.fillRect(box{x, ys.at(p.Base + p.Y), x + barW, ys.at(p.Base)}, c)
		}
	}
	d.setText(d.st.LabelSize, ink)
	for _, series := range panel.Series {
		for _, p := range series.Points {
			if p.Label == "" {
				continue
			}
			_, h := d.measure(p.Label)
			d.centered(p.Label, xs.at(p.X), ys.at(p.LabelY)+h/2)
		}
	}
}

func (d *drawer) drawPoints(panel chartspec.Panel, xs, ys scale) {
	half := int(math.Round(d.st.PointSize / 2))
	for _, series := range panel.Series {
		c := colorOf(series.Color, d.st.Opacity)
		for _, p := range series.Points {
			x, y := xs.at(p.X), ys.at(p.Y)
			switch d.st.PointShape {
			case style.Square:
				d.fillRect(box{x - half, y - half, x + half, y + half}, c)
			case style.Triangle:
				d.polygon(c, [2]int{x, y - half}, [2]int{x + half, y + half}, [2]int{x - half, y + half})
			case style.Diamond:
				d.polygon(c, [2]int{x, y - half}, [2]int{x + half, y}, [2]int{x, y + half}, [2]int{x - half, y})
			default:
				d.r.SetFillColor(c)
				d.r.Circle(float64(half), x, y)
				d.r.Fill()
			}
		}
	}
}
