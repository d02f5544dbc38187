// Package sheet reads downloaded or about-to-be-uploaded workbooks for
// display. It does not validate rows; the server does that on import.
package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// Summary describes the first worksheet of a workbook.
type Summary struct {
	Sheet   string
	Sheets  []string
	Headers []string
	Rows    int // data rows, header excluded
}

// Inspect opens an xlsx workbook and summarizes its first sheet.
func Inspect(data []byte) (*Summary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	s := &Summary{Sheet: sheets[0], Sheets: sheets}
	rows = trimEmpty(rows)
	if len(rows) > 0 {
		s.Headers = rows[0]
		s.Rows = len(rows) - 1
	}
	return s, nil
}

// Preview returns the header row followed by at most n data rows of the
// first sheet. Short rows are padded to the header width.
func Preview(data []byte, n int) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	rows = trimEmpty(rows)
	if len(rows) == 0 {
		return nil, nil
	}
	if n >= 0 && len(rows) > n+1 {
		rows = rows[:n+1]
	}
	width := len(rows[0])
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return rows, nil
}

func trimEmpty(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if c != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
