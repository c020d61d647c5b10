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

// Package aggregator groups table rows by x-axis bucket and category,
// computing per-group counts and within-bucket proportions.
//
// Buckets are derived from the x-axis column according to a
// table.Granularity:
//
//   - ByYear buckets by calendar year, from dates, four-digit numeric years,
//     or date-like strings.
//   - ByMonth buckets by "YYYY-MM", and is invalid for columns that only
//     carry years.
//   - ByValue buckets by the raw display text of the x-axis value.
//
// Rows whose x-axis value cannot be bucketed are dropped, not errored; the
// number dropped is reported in Stats.
package aggregator

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	"github.com/ilhamster/traceviz/tabviz/category"
)

// ErrInvalidGranularity is returned when the x-axis column cannot support the
// requested granularity.
var ErrInvalidGranularity = errors.New("invalid granularity")

// AllCategory is the category of every row when no category column is
// specified.
const AllCategory = category.All

// Metric is the aggregated quantity.
type Metric int

// Supported metrics.
const (
	Count Metric = iota
	Proportion
)

func (m Metric) String() string {
	if m == Proportion {
		return "proportion"
	}
	return "count"
}

// MarshalJSON marshals a Metric as its name.
func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Bucket is an x-axis bucket.  Year is set only for year buckets.
type Bucket struct {
	Year  int
	Label string
}

// YearBucket returns the bucket for the specified year.
func YearBucket(year int) Bucket {
	return Bucket{Year: year, Label: strconv.Itoa(year)}
}

// LabelBucket returns a bucket for a "YYYY-MM" month or a raw x-axis value.
func LabelBucket(label string) Bucket {
	return Bucket{Label: label}
}

func (b Bucket) String() string {
	return b.Label
}

// MarshalJSON marshals a year Bucket as its year, and any other Bucket as its
// label.
func (b Bucket) MarshalJSON() ([]byte, error) {
	if b.Year != 0 {
		return json.Marshal(b.Year)
	}
	return json.Marshal(b.Label)
}

// Row is a single aggregated (bucket, category) group.  Proportion is only
// populated under the Proportion metric.
type Row struct {
	Bucket     Bucket  `json:"bucket"`
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion,omitempty"`
}

// Value returns the receiver's value under the specified metric.
func (r Row) Value(m Metric) float64 {
	if m == Proportion {
		return r.Proportion
	}
	return float64(r.Count)
}

// Spec specifies an aggregation.
type Spec struct {
	// The x-axis column, from which buckets are derived.
	X table.ColumnRef
	// The category column.  If zero, all rows fall in AllCategory.
	Category    table.ColumnRef
	Granularity table.Granularity
	Metric      Metric
	// The order of categories within each bucket.  Categories not listed
	// follow, in first-seen order.
	CategoryOrder []string
	// If true, Granularity was already validated with CheckGranularity
	// against a table containing the aggregated rows, as when aggregating
	// the facets of a single chart.
	GranularityChecked bool
}

// Stats describes rows excluded during aggregation.
type Stats struct {
	// Rows whose x-axis value was missing or could not be bucketed.
	Dropped int `json:"dropped"`
	// Rows whose category was missing.
	NullCategory int `json:"nullCategory"`
}

// Aggregate groups the rows of tbl as directed by spec.
func Aggregate(tbl *table.Table, spec Spec) ([]Row, error) {
	rows, _, err := AggregateWithStats(tbl, spec)
	return rows, err
}

type groupKey struct {
	bucket, category string
}

// AggregateWithStats is like Aggregate, but also reports excluded rows.
func AggregateWithStats(tbl *table.Table, spec Spec) ([]Row, Stats, error) {
	var stats Stats
	if !spec.X.Valid() {
		return nil, stats, fmt.Errorf("%w: no x-axis column", table.ErrColumnNotFound)
	}
	for _, ref := range []table.ColumnRef{spec.X, spec.Category} {
		if err := tbl.Check(ref); err != nil {
			return nil, stats, err
		}
	}
	xRef, catRef := spec.X, spec.Category
	if !spec.GranularityChecked {
		if err := CheckGranularity(tbl, xRef, spec.Granularity); err != nil {
			return nil, stats, err
		}
	}
	bucketOf, err := bucketerFor(xRef, spec.Granularity)
	if err != nil {
		return nil, stats, err
	}
	counts := map[groupKey]int{}
	buckets := map[string]Bucket{}
	bucketTotals := map[string]int{}
	var seenCategories []string
	seen := map[string]bool{}
	for row := 0; row < tbl.Len(); row++ {
		cat := AllCategory
		if catRef.Valid() {
			cv := tbl.Value(row, catRef)
			if cv.IsNull() {
				stats.NullCategory++
				continue
			}
			cat = cv.String()
		}
		b, res, ok := bucketOf(tbl.Value(row, xRef))
		// Year-only dates have no month.
		if spec.Granularity == table.ByMonth && res == table.Year {
			ok = false
		}
		if !ok {
			stats.Dropped++
			continue
		}
		if !seen[cat] {
			seen[cat] = true
			seenCategories = append(seenCategories, cat)
		}
		buckets[b.Label] = b
		bucketTotals[b.Label]++
		counts[groupKey{b.Label, cat}]++
	}
	orderedBuckets := sortBuckets(buckets, spec.Granularity)
	orderedCategories := category.New(seenCategories...).Reorder(spec.CategoryOrder).IDs()
	var ret []Row
	for _, b := range orderedBuckets {
		for _, cat := range orderedCategories {
			count, ok := counts[groupKey{b.Label, cat}]
			if !ok {
				continue
			}
			r := Row{
				Bucket:   b,
				Category: cat,
				Count:    count,
			}
			if spec.Metric == Proportion {
				r.Proportion = float64(count) / float64(bucketTotals[b.Label])
			}
			ret = append(ret, r)
		}
	}
	return ret, stats, nil
}

// CheckGranularity returns an error wrapping ErrInvalidGranularity if the
// referenced x-axis column of tbl cannot be bucketed at the specified
// granularity.  Under ByMonth, a column whose bucketable values all carry
// only years fails; a column mixing years and finer dates passes, and its
// year-only values are dropped during aggregation.
func CheckGranularity(tbl *table.Table, ref table.ColumnRef, granularity table.Granularity) error {
	if !ref.Valid() {
		return fmt.Errorf("%w: no x-axis column", table.ErrColumnNotFound)
	}
	if err := tbl.Check(ref); err != nil {
		return err
	}
	bucketOf, err := bucketerFor(ref, granularity)
	if err != nil || granularity != table.ByMonth {
		return err
	}
	yearOnly := false
	for row := 0; row < tbl.Len(); row++ {
		_, res, ok := bucketOf(tbl.Value(row, ref))
		if !ok {
			continue
		}
		if res != table.Year {
			return nil
		}
		yearOnly = true
	}
	if yearOnly {
		return fmt.Errorf("%w: column '%s' only carries years", ErrInvalidGranularity, ref.Name())
	}
	return nil
}

// MergeBuckets returns the union of the buckets of the provided row
// sequences, in ascending order.
func MergeBuckets(granularity table.Granularity, rowSets ...[]Row) []Bucket {
	buckets := map[string]Bucket{}
	for _, rows := range rowSets {
		for _, r := range rows {
			buckets[r.Bucket.Label] = r.Bucket
		}
	}
	return sortBuckets(buckets, granularity)
}

// sortBuckets returns buckets in ascending order: years numerically, months
// lexically, and raw values numerically if all are numeric and lexically
// otherwise.
func sortBuckets(buckets map[string]Bucket, granularity table.Granularity) []Bucket {
	ret := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		ret = append(ret, b)
	}
	switch granularity {
	case table.ByYear:
		sort.Slice(ret, func(a, b int) bool {
			return ret[a].Year < ret[b].Year
		})
	case table.ByValue:
		nums := make(map[string]float64, len(ret))
		numeric := true
		for _, b := range ret {
			f, err := strconv.ParseFloat(b.Label, 64)
			if err != nil {
				numeric = false
				break
			}
			nums[b.Label] = f
		}
		sort.Slice(ret, func(a, b int) bool {
			if numeric && nums[ret[a].Label] != nums[ret[b].Label] {
				return nums[ret[a].Label] < nums[ret[b].Label]
			}
			return ret[a].Label < ret[b].Label
		})
	default:
		sort.Slice(ret, func(a, b int) bool {
			return ret[a].Label < ret[b].Label
		})
	}
	return ret
}
