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
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVParser parses delimited text.  Input is decoded as UTF-8 (with or
// without a byte-order mark), falling back to Windows-1252 when it is not
// valid UTF-8.  The delimiter is sniffed from the header line.
type CSVParser struct {
	reader *csv.Reader
}

var _ Parser = &CSVParser{}

// Init is part of the Parser interface.
func (cp *CSVParser) Init(data []byte) ([]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParseError, err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrParseError)
	}
	cp.reader = csv.NewReader(bytes.NewReader(text))
	cp.reader.Comma = sniffDelimiter(text)
	cp.reader.FieldsPerRecord = -1
	header, err := cp.reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrParseError)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %s", ErrParseError, err)
	}
	return header, nil
}

// ReadRecord is part of the Parser interface.
func (cp *CSVParser) ReadRecord() ([]string, error) {
	if cp.reader == nil {
		return nil, io.EOF
	}
	return cp.reader.Read()
}

// decodeText returns data as UTF-8 text with any byte-order mark removed.
func decodeText(data []byte) ([]byte, error) {
	var fallback encoding.Encoding = encoding.Nop
	if !utf8.Valid(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))) {
		fallback = charmap.Windows1252
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), data)
	return text, err
}

// sniffDelimiter picks the most frequent of ',', ';', and tab on the first
// line of text, preferring ',' on ties.
func sniffDelimiter(text []byte) rune {
	line := text
	if idx := bytes.IndexByte(text, '\n'); idx >= 0 {
		line = text[:idx]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(line, []byte{byte(d)}); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
