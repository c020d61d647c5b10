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

// Package raster exports ChartSpecs as PNG or JPEG images.
//
// Export draws a ChartSpec's title, legend, and panels onto a single white
// canvas of the requested size, using the same colors, legend placement,
// facet layout, and style as the interactive view.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"time"

	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	chart "github.com/wcharczuk/go-chart/v2"
)

// Format is an image format.
type Format int

// Supported formats.
const (
	PNG Format = iota
	JPEG
)

// Image size bounds, in pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 600
	MinSize       = 200
	MaxSize       = 4000
)

const jpegQuality = 90

// ErrNoChart is returned when asked to export a nil ChartSpec.
var ErrNoChart = errors.New("no chart to export")

// ParseFormat parses an image format name.  The empty string is PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	default:
		return 0, fmt.Errorf("unsupported image format '%s'", s)
	}
}

func (f Format) String() string {
	if f == JPEG {
		return "jpeg"
	}
	return "png"
}

// Ext returns the receiver's file extension.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// ContentType returns the receiver's MIME type.
func (f Format) ContentType() string {
	return "image/" + f.String()
}

// Filename returns a timestamped export file name, like
// 'chart_20240131-150405.png'.
func Filename(prefix string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102-150405"), f.Ext())
}

// ClampSize bounds an image dimension to [MinSize, MaxSize].  Nonpositive
// dimensions take def.
func ClampSize(v, def int) int {
	switch {
	case v <= 0:
		return def
	case v < MinSize:
		return MinSize
	case v > MaxSize:
		return MaxSize
	default:
		return v
	}
}

// Export draws spec as a width x height image in the specified format, and
// writes it to w.  Dimensions are clamped with ClampSize.
func Export(w io.Writer, spec *chartspec.ChartSpec, f Format, width, height int) error {
	if spec == nil {
		return ErrNoChart
	}
	width, height = ClampSize(width, DefaultWidth), ClampSize(height, DefaultHeight)
	r, err := chart.PNG(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)
	d := &drawer{
		r:    r,
		spec: spec,
		st:   spec.Style.Clamp(),
	}
	d.draw(width, height)
	if f == PNG {
		return r.Save(w)
	}
	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
}
