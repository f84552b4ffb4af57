// Package xlsx renders extracted rows as a single-sheet workbook.
//
// Row i, cell j lands in sheet cell (i+1, j+1). Every column holding at
// least one non-empty cell is sized to its longest value plus two
// characters, capped at MaxColumnWidth; other columns keep the default.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Macora01/pdftoexcl/internal/fsutil"
)

const (
	// SheetName is the name of the only sheet in a rendered workbook.
	SheetName = "Converted Data"

	// MaxColumnWidth caps auto-fitted column widths, in characters.
	MaxColumnWidth = 50

	// ContentType is the media type of a rendered workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RenderError reports a workbook that could not be built or written.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ColumnWidths returns the auto-fitted width of every column that holds a
// non-empty cell, keyed by 1-based column number. Length is counted in
// characters, not bytes.
func ColumnWidths(rows [][]string) map[int]float64 {
	longest := make(map[int]int)
	for _, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			if n := utf8.RuneCountInString(v); n > longest[j+1] {
				longest[j+1] = n
			}
		}
	}

	widths := make(map[int]float64, len(longest))
	for col, n := range longest {
		widths[col] = float64(min(n+2, MaxColumnWidth))
	}
	return widths
}

// Render returns the workbook for rows as bytes.
func Render(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderFile writes the workbook for rows to path. The file appears
// atomically: readers see either the previous file or the complete new one.
func RenderFile(rows [][]string, path string) error {
	err := fsutil.WriteAtomic(path, func(w io.Writer) error {
		return Write(w, rows)
	})
	if err == nil {
		return nil
	}
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return err
	}
	return &RenderError{Op: "publish", Err: err}
}

// Write streams the workbook for rows to w.
func Write(w io.Writer, rows [][]string) error {
	f, err := build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return &RenderError{Op: "write", Err: err}
	}
	return nil
}

func build(rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(op string, err error) (*excelize.File, error) {
		_ = f.Close()
		return nil, &RenderError{Op: op, Err: err}
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fail("name sheet", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fail("open sheet", err)
	}

	// Column widths must precede row data in a streamed sheet.
	widths := ColumnWidths(rows)
	cols := make([]int, 0, len(widths))
	for c := range widths {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		if err := sw.SetColWidth(c, c, widths[c]); err != nil {
			return fail("set column width", err)
		}
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fail("address row", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			if v != "" {
				values[j] = v
			}
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fail(fmt.Sprintf("write row %d", i+1), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fail("flush sheet", err)
	}
	return f, nil
}
