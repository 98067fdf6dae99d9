package fetcher

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/staffdesk/core/session"
)

// position of the join date in a positional employee row
const joinDateColumn = 4

// SheetFetcher reads employees from an .xlsx or .xls export, one positional row per employee.
type SheetFetcher struct {
	Path      string
	HasHeader bool
}

var _ session.Fetcher = SheetFetcher{}

func (f SheetFetcher) Fetch(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sheet")
	}
	defer func() { _ = file.Close() }()

	rows, err := ReadRows(file, f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filepath.Base(f.Path))
	}
	if f.HasHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	payload := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) > joinDateColumn {
			row[joinDateColumn] = excelDate(row[joinDateColumn])
		}
		payload = append(payload, row)
	}
	return payload, nil
}

// ReadRows returns the cells of the single worksheet of an .xls or .xlsx file.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, errors.New("multiple worksheets found")
		}
		return workbook.ReadAllCells(100000), nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, errors.New("no worksheet found")
		}
		return file.GetRows(sheet)
	}
}

// excelDate turns an Excel date serial (eg. "43831") into 2006-01-02; other values pass through.
func excelDate(s string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return s
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
