// Package spreadsheet decodes an uploaded workbook into an ordered sequence
// of rows keyed by header column name. Cells are loosely typed: each one is
// empty, a string, or a number, and callers coerce them explicitly.
package spreadsheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

type Cell struct {
	kind   CellKind
	text   string
	number float64
}

func newCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{kind: CellEmpty}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{kind: CellNumber, text: trimmed, number: n}
	}
	return Cell{kind: CellString, text: trimmed}
}

func (c Cell) Kind() CellKind { return c.kind }

// String returns the trimmed cell text. Empty cells return "".
func (c Cell) String() string { return c.text }

// Int coerces the cell to an integer. Non-numeric text, fractional numbers
// and empty cells fail; the caller treats that as a row-scoped error.
func (c Cell) Int() (int, error) {
	switch c.kind {
	case CellNumber:
		n := int(c.number)
		if float64(n) != c.number {
			return 0, errors.Errorf("cell value is not an integer: %s", c.text)
		}
		return n, nil
	case CellString:
		return 0, errors.Errorf("cell value is not a number: %s", c.text)
	default:
		return 0, errors.New("cell is empty")
	}
}

// Row is one data row. Number is the 1-indexed workbook row number,
// so the first data row is 2 (the header occupies row 1).
type Row struct {
	Number int
	cells  map[string]Cell
}

// Cell returns the cell under the named header column.
// Unknown columns yield an empty cell.
func (r Row) Cell(column string) Cell { return r.cells[column] }

type Sheet struct {
	columns []string
	rows    []Row
}

// Parse decodes the first sheet of a workbook. The first row is the header;
// rows shorter than the header are padded with empty cells.
func Parse(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "error opening workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.Wrap(err, "error reading rows from first sheet")
	}

	s := &Sheet{}
	if len(rows) == 0 {
		return s, nil
	}
	for _, h := range rows[0] {
		s.columns = append(s.columns, strings.TrimSpace(h))
	}
	for i, raw := range rows[1:] {
		cells := make(map[string]Cell, len(s.columns))
		for j, col := range s.columns {
			if col == "" {
				continue
			}
			if j < len(raw) {
				cells[col] = newCell(raw[j])
			} else {
				cells[col] = Cell{kind: CellEmpty}
			}
		}
		s.rows = append(s.rows, Row{Number: i + 2, cells: cells})
	}
	return s, nil
}

func (s *Sheet) Columns() []string { return s.columns }

func (s *Sheet) Rows() []Row { return s.rows }

// MissingColumns returns the required column names absent from the header,
// in the order they were required.
func (s *Sheet) MissingColumns(required []string) []string {
	var missing []string
	for _, req := range required {
		found := false
		for _, col := range s.columns {
			if col == req {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	return missing
}
