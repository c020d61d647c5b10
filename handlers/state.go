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
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/safehtml"
	"github.com/ilhamster/traceviz/tabviz/analysis/filter"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	tablereader "github.com/ilhamster/traceviz/tabviz/analysis/table_reader"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/pipeline"
	"github.com/ilhamster/traceviz/tabviz/style"
)

// Form field names.
const (
	titleKey       = "title"
	subtitleKey    = "subtitle"
	kindKey        = "kind"
	xKey           = "x"
	yKey           = "y"
	colorKey       = "color"
	facetKey       = "facet"
	granularityKey = "granularity"
	dateStartKey   = "date_start"
	dateEndKey     = "date_end"
	catsForKey     = "cats_for"
	catKey         = "cat"
	yMinKey        = "y_min"
	yMaxKey        = "y_max"
	colorPrefix    = "color"
	opacityKey     = "opacity"
	titleSizeKey   = "title_size"
	axisSizeKey    = "axis_size"
	labelSizeKey   = "label_size"
	legendKey      = "legend"
	legendPosKey   = "legend_pos"
	facetLayoutKey = "facet_layout"
	pointSizeKey   = "point_size"
	pointShapeKey  = "point_shape"
	formatKey      = "format"
	widthKey       = "width"
	heightKey      = "height"
)

var maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func parseError(key, val string, err error) error {
	return fmt.Errorf("%w: field '%s' value '%s': %s", tablereader.ErrParseError, key, val, err)
}

func parseFloat(q url.Values, key string, def float64) (float64, error) {
	val := strings.TrimSpace(q.Get(key))
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, parseError(key, val, err)
	}
	return f, nil
}

func parseInt(q url.Values, key string, def int) (int, error) {
	val := strings.TrimSpace(q.Get(key))
	if val == "" {
		return def, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, parseError(key, val, err)
	}
	return i, nil
}

func parseDate(q url.Values, key string, def time.Time) (time.Time, error) {
	val := strings.TrimSpace(q.Get(key))
	if val == "" {
		return def, nil
	}
	t, err := time.Parse(table.DateLayout, val)
	if err != nil {
		return time.Time{}, parseError(key, val, err)
	}
	return t, nil
}

// parseEnum parses the named field with parse, wrapping any error as a
// parse error.
func parseEnum[T any](q url.Values, key string, parse func(string) (T, error)) (T, error) {
	val := q.Get(key)
	ret, err := parse(val)
	if err != nil {
		return ret, parseError(key, val, err)
	}
	return ret, nil
}

func parseLegend(s string) (bool, error) {
	switch s {
	case "", "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected 'on' or 'off'")
	}
}

// colorField returns the form field carrying the color override for the
// specified category.  Categories are hex-encoded, since field names must be
// identifiers.
func colorField(category string) safehtml.Identifier {
	return safehtml.IdentifierFromConstantPrefix(colorPrefix, hex.EncodeToString([]byte(category)))
}

// colorFieldCategory is the inverse of colorField.
func colorFieldCategory(key string) (string, bool) {
	encoded, ok := strings.CutPrefix(key, colorPrefix+"-")
	if !ok {
		return "", false
	}
	cat, err := hex.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(cat), true
}

// ParseState returns the pipeline.State described by the provided form
// values.  Absent fields take their defaults.  Malformed values yield an
// error wrapping tablereader.ErrParseError.
//
// Category inclusion applies only when the 'cats_for' field names the
// selected color column, so that a category selection made for one column
// is not applied to another.
func ParseState(q url.Values) (pipeline.State, error) {
	s := pipeline.DefaultState()
	var err error
	s.Title, s.Subtitle = q.Get(titleKey), q.Get(subtitleKey)
	s.X, s.Y, s.Color, s.Facet = q.Get(xKey), q.Get(yKey), q.Get(colorKey), q.Get(facetKey)
	if s.Type, err = parseEnum(q, kindKey, pipeline.ParseChartType); err != nil {
		return s, err
	}
	if s.Granularity, err = parseEnum(q, granularityKey, table.ParseGranularity); err != nil {
		return s, err
	}
	if q.Get(dateStartKey) != "" || q.Get(dateEndKey) != "" {
		dr := &filter.DateRange{}
		if dr.Start, err = parseDate(q, dateStartKey, time.Time{}); err != nil {
			return s, err
		}
		if dr.End, err = parseDate(q, dateEndKey, maxDate); err != nil {
			return s, err
		}
		s.DateRange = dr
	}
	if s.Color != "" && q.Get(catsForKey) == s.Color {
		s.Categories = filter.NewCategorySet(q[catKey]...)
	}
	if q.Get(yMinKey) != "" || q.Get(yMaxKey) != "" {
		nr := &filter.NumericRange{}
		if nr.Min, err = parseFloat(q, yMinKey, math.Inf(-1)); err != nil {
			return s, err
		}
		if nr.Max, err = parseFloat(q, yMaxKey, math.Inf(1)); err != nil {
			return s, err
		}
		s.NumericRange = nr
	}
	for key, vals := range q {
		cat, ok := colorFieldCategory(key)
		if !ok || len(vals) == 0 {
			continue
		}
		if s.Colors == nil {
			s.Colors = map[string]string{}
		}
		s.Colors[cat] = vals[0]
	}
	for _, f := range []struct {
		key string
		val *float64
		def float64
	}{
		{opacityKey, &s.Style.Opacity, style.DefaultOpacity},
		{titleSizeKey, &s.Style.TitleSize, style.DefaultTitleSize},
		{axisSizeKey, &s.Style.AxisSize, style.DefaultFontSize},
		{labelSizeKey, &s.Style.LabelSize, style.DefaultFontSize},
		{pointSizeKey, &s.Style.PointSize, style.DefaultPointSize},
	} {
		if *f.val, err = parseFloat(q, f.key, f.def); err != nil {
			return s, err
		}
	}
	if s.Style.PointShape, err = parseEnum(q, pointShapeKey, style.ParsePointShape); err != nil {
		return s, err
	}
	if s.Legend.Visible, err = parseEnum(q, legendKey, parseLegend); err != nil {
		return s, err
	}
	if s.Legend.Position, err = parseEnum(q, legendPosKey, chartspec.ParsePosition); err != nil {
		return s, err
	}
	if s.FacetLayout, err = parseEnum(q, facetLayoutKey, chartspec.ParseLayoutMode); err != nil {
		return s, err
	}
	return s, nil
}

// withDefaults fills in an x-axis column if none is chosen: the first date
// column of tbl, or else its first column.
func withDefaults(tbl *table.Table, s pipeline.State) pipeline.State {
	if s.X != "" {
		return s
	}
	cols := tbl.Columns()
	for _, col := range cols {
		if col.Type == table.Date {
			s.X = col.Name
			return s
		}
	}
	if len(cols) > 0 {
		s.X = cols[0].Name
	}
	return s
}
