package excel

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	statement "ctacte-backend/internal/statement/domain"
)

// ReadTable loads the first sheet of an xlsx file as a header row plus data
// rows. The caller feeds the result to the domain parser; no typing happens
// here. A missing file or an empty sheet is the batch-fatal no-data case.
func ReadTable(path string) ([]string, [][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("excel: open %s: %w", path, statement.ErrNoData)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("excel: open %s: %w", path, err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

// ReadTableFrom reads the first sheet straight from an upload stream.
func ReadTableFrom(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("excel: read upload: %w", err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

func readFirstSheet(f *excelize.File) ([]string, [][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, statement.ErrNoData
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("excel: read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, statement.ErrNoData
	}
	return rows[0], rows[1:], nil
}
