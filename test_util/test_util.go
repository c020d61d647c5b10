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

// Package testutil provides helpers for building test tables and uploads.
package testutil

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	tablereader "github.com/ilhamster/traceviz/tabviz/analysis/table_reader"
	"github.com/xuri/excelize/v2"
)

// ScenarioCSV is a small dataset of dated, categorized rows.
const ScenarioCSV = `
date,cat
2020-01-15,X
2020-03-01,Y
2021-02-10,X
`

// TableFromCSV loads the provided CSV text, with leading newlines trimmed,
// into a Table.
func TableFromCSV(t testing.TB, csv string) *table.Table {
	t.Helper()
	tbl, err := tablereader.Load([]byte(strings.TrimLeft(csv, "\n")), "test.csv")
	if err != nil {
		t.Fatalf("failed to load test CSV: %s", err)
	}
	return tbl
}

// ScenarioTable returns ScenarioCSV as a Table.
func ScenarioTable(t testing.TB) *table.Table {
	t.Helper()
	return TableFromCSV(t, ScenarioCSV)
}

// XLSX returns a workbook whose first sheet holds the provided rows.
func XLSX(t testing.TB, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			t.Fatalf("failed to name cell: %s", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %s", idx, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook: %s", err)
	}
	return buf.Bytes()
}

// MultipartUpload returns a multipart form body carrying data as the 'file'
// field under fileName, and the body's content type.
func MultipartUpload(t testing.TB, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %s", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("failed to write form file: %s", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %s", err)
	}
	return body, mw.FormDataContentType()
}
