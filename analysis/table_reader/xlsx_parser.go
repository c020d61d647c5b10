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

package tablereader

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXParser parses the first sheet of an Office Open XML workbook.  Cells
// are read raw, without applying number formats, so dates arrive as serial
// day numbers; see SerialDate.
type XLSXParser struct {
	rows     [][]string
	next     int
	date1904 bool
}

var _ Parser = &XLSXParser{}

// Init is part of the Parser interface.
func (xp *XLSXParser) Init(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParseError, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParseError)
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		xp.date1904 = *props.Date1904
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet '%s': %s", ErrParseError, sheets[0], err)
	}
	// Skip leading blank rows; the first non-blank row is the header.
	for len(rows) > 0 && isBlank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrParseError)
	}
	xp.rows = rows[1:]
	xp.next = 0
	return rows[0], nil
}

// ReadRecord is part of the Parser interface.
func (xp *XLSXParser) ReadRecord() ([]string, error) {
	if xp.next >= len(xp.rows) {
		return nil, io.EOF
	}
	row := xp.rows[xp.next]
	xp.next++
	return row, nil
}

// SerialDate converts a spreadsheet serial day number to a date.
func (xp *XLSXParser) SerialDate(serial float64) (time.Time, bool) {
	// Serial 1 is 1900-01-01; 2958465 is 9999-12-31.
	if serial < 1 || serial > 2958465 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, xp.date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
