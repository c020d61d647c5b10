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

package aggregator

import (
	"fmt"
	"time"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
)

// bucketer derives a Bucket from an x-axis value, also returning the
// resolution of the date the value carried.  It returns false if the value
// cannot be bucketed.
type bucketer func(v table.Value) (Bucket, table.Resolution, bool)

// dateOf interprets v as a date: dates directly, at the resolution they
// were read with, numbers as four-digit years, and strings by best-effort
// parsing.
func dateOf(v table.Value) (time.Time, table.Resolution, bool) {
	if t, err := table.ExpectDateValue(v); err == nil {
		res, _ := table.ExpectDateResolution(v)
		return t, res, true
	}
	if f, err := table.ExpectNumberValue(v); err == nil {
		t, ok := table.YearDate(f)
		return t, table.Year, ok
	}
	if s, err := table.ExpectStringValue(v); err == nil {
		return table.ParseDate(s)
	}
	return time.Time{}, table.Day, false
}

func bucketerFor(ref table.ColumnRef, granularity table.Granularity) (bucketer, error) {
	col := ref.Column()
	switch granularity {
	case table.ByYear:
		return func(v table.Value) (Bucket, table.Resolution, bool) {
			t, res, ok := dateOf(v)
			if !ok {
				return Bucket{}, res, false
			}
			return YearBucket(t.Year()), res, true
		}, nil
	case table.ByMonth:
		if col.Type == table.Number || (col.Type == table.Date && col.Resolution == table.Year) {
			return nil, fmt.Errorf("%w: column '%s' only carries years", ErrInvalidGranularity, col.Name)
		}
		return func(v table.Value) (Bucket, table.Resolution, bool) {
			t, res, ok := dateOf(v)
			if !ok {
				return Bucket{}, res, false
			}
			return LabelBucket(t.Format("2006-01")), res, true
		}, nil
	case table.ByValue:
		return func(v table.Value) (Bucket, table.Resolution, bool) {
			if v.IsNull() {
				return Bucket{}, table.Day, false
			}
			return LabelBucket(v.String()), table.Day, true
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidGranularity, granularity)
	}
}
