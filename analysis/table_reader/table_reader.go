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

// Package tablereader loads uploaded CSV and spreadsheet files into
// table.Tables, inferring column types and coercing well-known date columns.
package tablereader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
)

var (
	// ErrUnsupportedFormat is returned when a file's extension names no
	// supported format.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrParseError is returned when a file cannot be read as its format.
	ErrParseError = errors.New("unable to parse file")
)

// DateColumns lists the column names that receive automatic date coercion.
var DateColumns = []string{"date", "onsetdate", "specdate", "DateEnter", "Year"}

// Parser reads a header and string records from an uploaded file.
type Parser interface {
	// Init prepares the Parser to read data, returning its header row.
	Init(data []byte) ([]string, error)
	// ReadRecord returns the next record, or io.EOF once all records have
	// been read.
	ReadRecord() ([]string, error)
}

// serialDater is implemented by Parsers whose formats store dates as serial
// day numbers.
type serialDater interface {
	SerialDate(serial float64) (time.Time, bool)
}

// ParserFor returns a new Parser for the provided file name, chosen by its
// extension.
func ParserFor(fileName string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".txt":
		return &CSVParser{}, nil
	case ".xlsx", ".xlsm", ".xls":
		return &XLSXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, fileName)
	}
}

// Load parses the provided file contents into a Table, selecting the file
// format from fileName's extension.
func Load(data []byte, fileName string) (*table.Table, error) {
	parser, err := ParserFor(fileName)
	if err != nil {
		return nil, err
	}
	return Read(data, parser)
}

// Read parses the provided file contents into a Table using the provided
// Parser.
func Read(data []byte, parser Parser) (*table.Table, error) {
	header, err := parser.Init(data)
	if err != nil {
		return nil, err
	}
	names := normalizeHeader(header)
	var records [][]string
	for {
		record, err := parser.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrParseError, len(records)+1, err)
		}
		if isBlank(record) {
			continue
		}
		// Ragged rows: missing cells are empty, extra cells are dropped.
		row := make([]string, len(names))
		copy(row, record)
		records = append(records, row)
	}
	sd, _ := parser.(serialDater)
	columns := make([]table.Column, len(names))
	rows := make([][]table.Value, len(records))
	for idx := range rows {
		rows[idx] = make([]table.Value, len(names))
	}
	for colIdx, name := range names {
		cells := make([]string, len(records))
		for rowIdx, record := range records {
			cells[rowIdx] = strings.TrimSpace(record[colIdx])
		}
		col, values := inferColumn(name, cells, sd)
		columns[colIdx] = col
		for rowIdx, v := range values {
			rows[rowIdx][colIdx] = v
		}
	}
	tbl, err := table.New(columns, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParseError, err)
	}
	return tbl, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader trims header names, names empty headers by position, and
// suffixes repeated names so that every column name is unique.
func normalizeHeader(header []string) []string {
	ret := make([]string, len(header))
	used := map[string]bool{}
	for idx, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}
		unique := name
		for n := 2; used[unique]; n++ {
			unique = fmt.Sprintf("%s_%d", name, n)
		}
		used[unique] = true
		ret[idx] = unique
	}
	return ret
}

func isDateColumn(name string) bool {
	for _, dc := range DateColumns {
		if name == dc {
			return true
		}
	}
	return false
}

// inferColumn infers the type of the named column from its cells, returning
// the column and its typed values.
func inferColumn(name string, cells []string, sd serialDater) (table.Column, []table.Value) {
	numbers := make([]float64, len(cells))
	numeric := true
	for idx, cell := range cells {
		if cell == "" {
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		numbers[idx] = f
	}
	values := make([]table.Value, len(cells))
	if isDateColumn(name) {
		col := table.Column{
			Name:       name,
			Type:       table.Date,
			Resolution: table.Year,
		}
		parsed := 0
		for idx, cell := range cells {
			if cell == "" {
				continue
			}
			var (
				t   time.Time
				res table.Resolution
				ok  bool
			)
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				t, res, ok = numericDate(f, sd)
			} else {
				t, res, ok = table.ParseDate(cell)
			}
			if !ok {
				continue
			}
			if res < col.Resolution {
				col.Resolution = res
			}
			values[idx] = table.DateValueAt(t, res)
			parsed++
		}
		if parsed == 0 {
			col.Resolution = table.Day
		}
		return col, values
	}
	if numeric {
		for idx, cell := range cells {
			if cell != "" {
				values[idx] = table.NumberValue(numbers[idx])
			}
		}
		return table.Column{Name: name, Type: table.Number}, values
	}
	for idx, cell := range cells {
		if cell != "" {
			values[idx] = table.StringValue(cell)
		}
	}
	return table.Column{Name: name, Type: table.String}, values
}

// numericDate converts a numeric date cell: a four-digit year becomes January
// 1st of that year, and other numbers are treated as serial dates if the
// source format supports them.
func numericDate(f float64, sd serialDater) (time.Time, table.Resolution, bool) {
	if t, ok := table.YearDate(f); ok {
		return t, table.Year, true
	}
	if sd != nil {
		if t, ok := sd.SerialDate(f); ok {
			return t, table.Day, true
		}
	}
	return time.Time{}, table.Day, false
}
