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

import "fmt"

// Granularity is the unit by which x-axis values are bucketed.
type Granularity int

// Supported granularities.  ByValue buckets by the raw display text of the
// x-axis value, and applies to x-axis columns of any type.
const (
	ByYear Granularity = iota
	ByMonth
	ByValue
)

func (g Granularity) String() string {
	switch g {
	case ByYear:
		return "year"
	case ByMonth:
		return "month"
	case ByValue:
		return "none"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity parses a granularity name as produced by
// Granularity.String.  The empty string is ByYear.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", "year":
		return ByYear, nil
	case "month":
		return ByMonth, nil
	case "none":
		return ByValue, nil
	default:
		return 0, fmt.Errorf("unknown granularity '%s'", s)
	}
}
