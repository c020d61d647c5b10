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

package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts tried, in order, when parsing date strings.
var dateLayouts = []struct {
	layout     string
	resolution Resolution
}{
	{"2006-01-02", Day},
	{"2006/01/02", Day},
	{"01/02/2006", Day},
	{"02-Jan-2006", Day},
	{time.RFC3339, Day},
	{"2006-01-02 15:04:05", Day},
	{"2006-01", Month},
}

// YearDate returns January 1st of the provided year, if f is an integral
// four-digit year.
func YearDate(f float64) (time.Time, bool) {
	if f != math.Trunc(f) || f < 1000 || f > 9999 {
		return time.Time{}, false
	}
	return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), true
}

// ParseDate makes a best-effort attempt at parsing s as a date, returning the
// parsed date and the resolution the text carried.  A bare four-digit year
// parses as January 1st of that year with Year resolution.
func ParseDate(s string) (time.Time, Resolution, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Day, false
	}
	if len(s) == 4 {
		if y, err := strconv.Atoi(s); err == nil {
			if t, ok := YearDate(float64(y)); ok {
				return t, Year, true
			}
		}
	}
	for _, dl := range dateLayouts {
		if t, err := time.Parse(dl.layout, s); err == nil {
			return t.UTC(), dl.resolution, true
		}
	}
	return time.Time{}, Day, false
}
