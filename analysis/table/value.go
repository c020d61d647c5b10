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
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the layout used to display date values.
const DateLayout = "2006-01-02"

type valueType int

// Enumerated value types.
const (
	nullValue valueType = iota
	stringValue
	numberValue
	dateValue
)

// Value is a single table cell: a string, a number, a date, or null.  Dates
// also carry the resolution of the text they were read from.
type Value struct {
	v   any
	t   valueType
	res Resolution
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// StringValue returns a Value holding the provided string.
func StringValue(s string) Value {
	return Value{v: s, t: stringValue}
}

// NumberValue returns a Value holding the provided number.
func NumberValue(f float64) Value {
	return Value{v: f, t: numberValue}
}

// DateValue returns a Value holding the provided date, normalized to UTC,
// at Day resolution.
func DateValue(t time.Time) Value {
	return DateValueAt(t, Day)
}

// DateValueAt returns a Value holding the provided date, normalized to UTC,
// at the specified resolution.
func DateValueAt(t time.Time, res Resolution) Value {
	return Value{v: t.UTC(), t: dateValue, res: res}
}

// IsNull returns true if the receiver holds no value.
func (v Value) IsNull() bool {
	return v.t == nullValue
}

// IsNumber returns true if the receiver holds a number.
func (v Value) IsNumber() bool {
	return v.t == numberValue
}

// IsDate returns true if the receiver holds a date.
func (v Value) IsDate() bool {
	return v.t == dateValue
}

// Equal returns true if the receiver and o hold the same typed value.
func (v Value) Equal(o Value) bool {
	if v.t != o.t {
		return false
	}
	switch v.t {
	case nullValue:
		return true
	case dateValue:
		return v.res == o.res && v.v.(time.Time).Equal(o.v.(time.Time))
	default:
		return v.v == o.v
	}
}

// String returns the display text of the receiver.  Numbers use their
// shortest representation, dates use DateLayout, and null is empty.
func (v Value) String() string {
	switch v.t {
	case stringValue:
		return v.v.(string)
	case numberValue:
		return strconv.FormatFloat(v.v.(float64), 'f', -1, 64)
	case dateValue:
		return v.v.(time.Time).Format(DateLayout)
	default:
		return ""
	}
}

// ExpectStringValue expects the provided Value to be a string, returning that
// string or an error if it isn't.
func ExpectStringValue(v Value) (string, error) {
	if v.t != stringValue {
		return "", fmt.Errorf("expected string value")
	}
	return v.v.(string), nil
}

// ExpectNumberValue expects the provided Value to be a number, returning that
// number or an error if it isn't.
func ExpectNumberValue(v Value) (float64, error) {
	if v.t != numberValue {
		return 0, fmt.Errorf("expected number value")
	}
	return v.v.(float64), nil
}

// ExpectDateValue expects the provided Value to be a date, returning that
// date or an error if it isn't.
func ExpectDateValue(v Value) (time.Time, error) {
	if v.t != dateValue {
		return time.Time{}, fmt.Errorf("expected date value")
	}
	return v.v.(time.Time), nil
}

// ExpectDateResolution expects the provided Value to be a date, returning
// the resolution it carries or an error if it isn't.
func ExpectDateResolution(v Value) (Resolution, error) {
	if v.t != dateValue {
		return Day, fmt.Errorf("expected date value")
	}
	return v.res, nil
}
