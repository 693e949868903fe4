// Copyright 2023 ArkFunds-Go

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
)

// Row is the interface a table row representation must implement.
type Row interface {
	CSV() []string // an encoding/csv compatible row representation
}

// Table is a simple tabular result container. Fetched API rows implement Row,
// and the apps print the resulting Table as text or CSV.
//
// A typical use:
//
//	t := NewTable(db.HoldingRowHeader()...)
//	t.AddRow(rows...)
//	t.WriteText(os.Stdout, table.Params{})
type Table struct {
	Header []string // optional, may be nil
	Rows   []Row
}

// NewTable creates a new Table instance with optional column headers. When
// present, the number of headers is expected to match the number of elements
// in each Row.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// AddRow adds one or more rows to the table.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// rowLimit computes the number of data rows to write.
func (p Params) rowLimit(n int) int {
	if p.Rows > 0 && p.Rows < n {
		return p.Rows
	}
	return n
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range t.Rows[:p.rowLimit(len(t.Rows))] {
		if err := cw.Write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// textRows collects all the rows to be printed, header included, and checks
// that they all have the same number of columns.
func (t *Table) textRows(p Params) ([][]string, error) {
	var rows [][]string
	if !p.NoHeader && len(t.Header) > 0 {
		rows = append(rows, t.Header)
	}
	for _, r := range t.Rows[:p.rowLimit(len(t.Rows))] {
		rows = append(rows, r.CSV())
	}
	for _, r := range rows {
		if len(r) == 0 {
			return nil, errors.Reason("row size = 0")
		}
		if len(r) != len(rows[0]) {
			return nil, errors.Reason("row size [%d] != expected size [%d]",
				len(r), len(rows[0]))
		}
	}
	return rows, nil
}

// trim cuts a cell down to width w, marking the cut with "..".
func trim(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return string(r[:w-2]) + ".."
}

// WriteText writes the table as a text formatted for ease of reading: columns
// are right-aligned and separated by " | ", the header by a dashed line.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	rows, err := t.textRows(p)
	if err != nil {
		return errors.Annotate(err, "malformed table")
	}
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			l := len([]rune(cell))
			if p.MaxColWidth > 0 && l > p.MaxColWidth {
				l = p.MaxColWidth
			}
			if widths[i] < l {
				widths[i] = l
			}
		}
	}
	write := func(row []string) error {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%[2]*[1]s", trim(cell, widths[i]), widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(cells, " | "))
		return err
	}
	start := 0
	if !p.NoHeader && len(t.Header) > 0 {
		if err := write(rows[0]); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		dashed := make([]string, len(widths))
		for i, width := range widths {
			dashed[i] = strings.Repeat("-", width)
		}
		if err := write(dashed); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
		start = 1
	}
	for _, r := range rows[start:] {
		if err := write(r); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
