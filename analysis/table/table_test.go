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
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		[]Column{
			{Name: "date", Type: Date},
			{Name: "cat", Type: String},
			{Name: "n", Type: Number},
		},
		[][]Value{
			{DateValue(date(2020, 1, 15)), StringValue("X"), NumberValue(1)},
			{DateValue(date(2020, 3, 1)), StringValue("Y"), NumberValue(2.5)},
			{Null(), StringValue("X"), Null()},
			{DateValue(date(2021, 2, 10)), StringValue("Z"), NumberValue(3)},
		},
	)
	if err != nil {
		t.Fatalf("New() yielded unexpected error %s", err)
	}
	return tbl
}

func TestNew(t *testing.T) {
	for _, test := range []struct {
		description string
		columns     []Column
		rows        [][]Value
		wantErr     bool
	}{{
		description: "well-formed",
		columns:     []Column{{Name: "a"}, {Name: "b"}},
		rows:        [][]Value{{StringValue("1"), Null()}},
	}, {
		description: "duplicate column",
		columns:     []Column{{Name: "a"}, {Name: "a"}},
		wantErr:     true,
	}, {
		description: "short row",
		columns:     []Column{{Name: "a"}, {Name: "b"}},
		rows:        [][]Value{{StringValue("1")}},
		wantErr:     true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			_, err := New(test.columns, test.rows)
			if (err != nil) != test.wantErr {
				t.Errorf("New() yielded error %v, wanted error: %t", err, test.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tbl := newTestTable(t)
	ref, err := tbl.Resolve("cat")
	if err != nil {
		t.Fatalf("Resolve('cat') yielded unexpected error %s", err)
	}
	if diff := cmp.Diff(Column{Name: "cat", Type: String}, ref.Column()); diff != "" {
		t.Errorf("Resolve('cat') => %v, diff (-want +got) %s", ref.Column(), diff)
	}
	if _, err := tbl.Resolve("nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Resolve('nope') yielded error %v, wanted ErrColumnNotFound", err)
	}
	optRef, err := tbl.ResolveOptional("")
	if err != nil || optRef.Valid() {
		t.Errorf("ResolveOptional('') => %v, %v; wanted invalid ref and no error", optRef, err)
	}
}

func TestSelectSharesSchema(t *testing.T) {
	tbl := newTestTable(t)
	catRef, err := tbl.Resolve("cat")
	if err != nil {
		t.Fatalf("Resolve('cat') yielded unexpected error %s", err)
	}
	sub := tbl.Select([]int{3, 0})
	got := []string{}
	for row := 0; row < sub.Len(); row++ {
		got = append(got, sub.Value(row, catRef).String())
	}
	if diff := cmp.Diff([]string{"Z", "X"}, got); diff != "" {
		t.Errorf("Select() => %v, diff (-want +got) %s", got, diff)
	}
	if tbl.Len() != 4 {
		t.Errorf("Select() modified its receiver: got %d rows, want 4", tbl.Len())
	}
}

func TestDistinct(t *testing.T) {
	tbl := newTestTable(t)
	for _, test := range []struct {
		description string
		column      string
		want        []Value
	}{{
		description: "strings in first-seen order",
		column:      "cat",
		want:        []Value{StringValue("X"), StringValue("Y"), StringValue("Z")},
	}, {
		description: "nulls omitted",
		column:      "n",
		want:        []Value{NumberValue(1), NumberValue(2.5), NumberValue(3)},
	}} {
		t.Run(test.description, func(t *testing.T) {
			ref, err := tbl.Resolve(test.column)
			if err != nil {
				t.Fatalf("Resolve() yielded unexpected error %s", err)
			}
			got := tbl.Distinct(ref)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Distinct() => %v, diff (-want +got) %s", got, diff)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	for _, test := range []struct {
		description string
		v           Value
		want        string
	}{
		{"null", Null(), ""},
		{"string", StringValue("hi"), "hi"},
		{"integral number", NumberValue(3), "3"},
		{"fractional number", NumberValue(2.25), "2.25"},
		{"date", DateValue(date(2021, 2, 10)), "2021-02-10"},
	} {
		t.Run(test.description, func(t *testing.T) {
			if got := test.v.String(); got != test.want {
				t.Errorf("String() => %q, want %q", got, test.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, test := range []struct {
		input          string
		wantOK         bool
		wantDate       time.Time
		wantResolution Resolution
	}{
		{"2020-01-15", true, date(2020, 1, 15), Day},
		{"2020/01/15", true, date(2020, 1, 15), Day},
		{"01/15/2020", true, date(2020, 1, 15), Day},
		{"15-Jan-2020", true, date(2020, 1, 15), Day},
		{"2020-01-15 10:11:12", true, time.Date(2020, 1, 15, 10, 11, 12, 0, time.UTC), Day},
		{"2020-03", true, date(2020, 3, 1), Month},
		{"2020", true, date(2020, 1, 1), Year},
		{" 1999 ", true, date(1999, 1, 1), Year},
		{"0999", false, time.Time{}, Day},
		{"soon", false, time.Time{}, Day},
		{"", false, time.Time{}, Day},
	} {
		t.Run(test.input, func(t *testing.T) {
			got, res, ok := ParseDate(test.input)
			if ok != test.wantOK {
				t.Fatalf("ParseDate(%q) ok => %t, want %t", test.input, ok, test.wantOK)
			}
			if !got.Equal(test.wantDate) || res != test.wantResolution {
				t.Errorf("ParseDate(%q) => %v (%s), want %v (%s)", test.input, got, res, test.wantDate, test.wantResolution)
			}
		})
	}
}

func TestYearDate(t *testing.T) {
	if got, ok := YearDate(2021); !ok || !got.Equal(date(2021, 1, 1)) {
		t.Errorf("YearDate(2021) => %v, %t", got, ok)
	}
	for _, f := range []float64{2021.5, 999, 10000} {
		if _, ok := YearDate(f); ok {
			t.Errorf("YearDate(%v) unexpectedly succeeded", f)
		}
	}
}

func TestDateResolution(t *testing.T) {
	for _, test := range []struct {
		description string
		v           Value
		want        Resolution
		wantErr     bool
	}{
		{"day by default", DateValue(date(2020, 5, 3)), Day, false},
		{"year", DateValueAt(date(2020, 1, 1), Year), Year, false},
		{"month", DateValueAt(date(2020, 5, 1), Month), Month, false},
		{"not a date", StringValue("2020"), Day, true},
	} {
		t.Run(test.description, func(t *testing.T) {
			got, err := ExpectDateResolution(test.v)
			if (err != nil) != test.wantErr {
				t.Fatalf("ExpectDateResolution() yielded error %v, wantErr %t", err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("ExpectDateResolution() => %s, want %s", got, test.want)
			}
		})
	}
	if DateValueAt(date(2020, 1, 1), Year).Equal(DateValue(date(2020, 1, 1))) {
		t.Errorf("dates of differing resolution unexpectedly compared equal")
	}
}
