package dataset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads a delivery report from an Excel workbook. The first
// sheet carrying the required header row is used.
func (l *Loader) LoadXLSX(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return l.fromWorkbook(f)
}

// LoadXLSXReader reads a delivery report workbook from a stream, used by
// the upload endpoint.
func (l *Loader) LoadXLSXReader(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return l.fromWorkbook(f)
}

func (l *Loader) fromWorkbook(f *excelize.File) ([]Record, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Prefer the first sheet that actually carries the report header;
	// marketing exports sometimes lead with a cover sheet.
	var lastErr error
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		records, err := l.fromRows(rows)
		if err != nil {
			var missing *MissingColumnError
			if errors.As(err, &missing) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		l.logger.Info("loaded workbook sheet", slog.String("sheet", sheet))
		return records, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no sheet contains delivery report data")
}
