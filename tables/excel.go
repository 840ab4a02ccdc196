package tables

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads both curve tables from an .xlsx workbook.
//
// The charge-off sheet is taken as-is: a header row of column names over a
// rectangular numeric body, column order preserved. The prepayment sheet
// gets the cleanup its upstream export needs: spacer columns without an
// integer term header are dropped, the first body row (a repeated-label
// artifact of the export) is dropped, and blank trailing cells are dropped
// rather than padded, so shorter terms keep shorter curves.
func LoadWorkbook(path, chargeOffSheet, prepaySheet string) (*ChargeOffTable, *PrepayTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	co, err := readChargeOffSheet(f, chargeOffSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("sheet %q: %w", chargeOffSheet, err)
	}
	pp, err := readPrepaySheet(f, prepaySheet)
	if err != nil {
		return nil, nil, fmt.Errorf("sheet %q: %w", prepaySheet, err)
	}
	return co, pp, nil
}

func readChargeOffSheet(f *excelize.File, sheet string) (*ChargeOffTable, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("need a header row and at least one data row")
	}

	names := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		names = append(names, strings.TrimSpace(h))
	}

	cols := make([][]float64, len(names))
	for r, row := range rows[1:] {
		if blankRow(row) {
			break
		}
		for c, name := range names {
			cell := ""
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: bad rate %q", r+2, name, cell)
			}
			cols[c] = append(cols[c], v)
		}
	}
	return NewChargeOffTable(names, cols)
}

func readPrepaySheet(f *excelize.File, sheet string) (*PrepayTable, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 3 {
		return nil, fmt.Errorf("need a header row and at least two data rows")
	}

	// Keep only columns headed by an integer term. Unnamed spacers and
	// stray label columns are unreachable by term lookup anyway.
	type termCol struct{ term, idx int }
	var keep []termCol
	seen := make(map[int]bool)
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" || strings.HasPrefix(name, "Unnamed") {
			continue
		}
		term, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		if seen[term] {
			return nil, fmt.Errorf("duplicate term column %d", term)
		}
		seen[term] = true
		keep = append(keep, termCol{term: term, idx: i})
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("no term columns in header")
	}

	// rows[1] is the artifact row; the body starts at rows[2].
	cols := make(map[int][]float64, len(keep))
	for r, row := range rows[2:] {
		for _, kc := range keep {
			cell := ""
			if kc.idx < len(row) {
				cell = strings.TrimSpace(row[kc.idx])
			}
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, term %d: bad speed %q", r+3, kc.term, cell)
			}
			cols[kc.term] = append(cols[kc.term], v)
		}
	}
	return NewPrepayTable(cols), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
