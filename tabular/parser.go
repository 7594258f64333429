// Package tabular turns uploaded CSV/Excel byte streams into rectangular
// datasets keyed by column name.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Record is one input row, column name -> raw cell value.
type Record map[string]string

// Dataset is an ordered sequence of records sharing one header list.
type Dataset struct {
	Headers []string
	Rows    []Record
}

// ParseError reports a malformed, unsupported or empty upload.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return "parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(err error, format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// Parse reads an upload and dispatches on the declared file extension.
// Supported formats: .csv, .xlsx, .xls.
func Parse(r io.Reader, filename string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, parseErrorf(err, "reading upload %q", filename)
	}
	if len(data) == 0 {
		return nil, parseErrorf(nil, "uploaded file is empty")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseXLSX(data)
	case ".xls":
		return parseXLS(data)
	default:
		return nil, parseErrorf(nil, "file type not allowed, use .xlsx, .xls or .csv")
	}
}

func parseCSV(data []byte) (*Dataset, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	// CSV files exported by Excel in zh locales arrive GBK-encoded.
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return nil, parseErrorf(err, "file is not valid UTF-8 or GBK text")
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, parseErrorf(err, "malformed CSV")
	}
	return fromRows(records, false)
}

func parseXLSX(data []byte) (*Dataset, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseErrorf(err, "corrupt xlsx file")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErrorf(nil, "workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, parseErrorf(err, "reading sheet %q", sheets[0])
	}
	return fromRows(rows, true)
}

func parseXLS(data []byte) (*Dataset, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, parseErrorf(err, "corrupt xls file")
	}
	rows := book.ReadAllCells(1 << 20)
	return fromRows(rows, true)
}

// fromRows builds a Dataset from raw rows. The first row is the header,
// taken verbatim. Spreadsheet readers drop trailing empty cells, so short
// rows are padded when padShort is set; for CSV the row length is strict.
func fromRows(rows [][]string, padShort bool) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, parseErrorf(nil, "uploaded file is empty")
	}

	headers := rows[0]
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			return nil, parseErrorf(nil, "header column %d is blank", i+1)
		}
		if seen[h] {
			return nil, parseErrorf(nil, "duplicate header column %q", h)
		}
		seen[h] = true
	}

	if len(rows) == 1 {
		return nil, parseErrorf(nil, "no data rows found")
	}

	dataset := &Dataset{Headers: headers, Rows: make([]Record, 0, len(rows)-1)}
	for n, row := range rows[1:] {
		if len(row) > len(headers) {
			return nil, parseErrorf(nil, "row %d has %d cells, expected %d", n+1, len(row), len(headers))
		}
		if len(row) < len(headers) {
			if !padShort {
				return nil, parseErrorf(nil, "row %d has %d cells, expected %d", n+1, len(row), len(headers))
			}
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		record := make(Record, len(headers))
		for i, h := range headers {
			record[h] = row[i]
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset, nil
}
