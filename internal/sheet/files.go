package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/theatre-booking-calendar/internal/model"
)

// ErrUnsupportedFormat is returned for file types other than CSV and XLSX.
var ErrUnsupportedFormat = errors.New("unsupported sheet format")

// ErrEmptySheet is returned when a file has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	xlsxSheetName  = "Bookings"
	xlsxDateFormat = "dd/mm/yyyy"
)

// FormatFromName picks the sheet format from a file name extension.
func FormatFromName(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadFile reads the first sheet of a CSV or XLSX file and returns its header
// and data rows. XLSX cells are read raw so dates arrive as day serials.
func ReadFile(name string, r io.Reader) ([]string, [][]string, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, nil, err
	}
	var rows [][]string
	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		if rows, err = cr.ReadAll(); err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
	case FormatXLSX:
		if rows, err = readXLSX(r); err != nil {
			return nil, nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptySheet
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, rows[1:], nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	opts := excelize.Options{RawCellValue: true}
	f, err := excelize.OpenReader(r, opts)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0], opts)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

// WriteCSV writes the table as CSV.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes the table as a single-sheet workbook. Date columns are
// stored as real dates formatted dd/mm/yyyy.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheetName); err != nil {
		return err
	}
	format := xlsxDateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("xlsx date style: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if c < len(t.Columns) && IsDateColumn(t.Columns[c]) && v != "" {
				d, err := time.Parse(model.DateKeyLayout, v)
				if err == nil {
					if err := f.SetCellValue(xlsxSheetName, cell, d); err != nil {
						return err
					}
					if err := f.SetCellStyle(xlsxSheetName, cell, cell, dateStyle); err != nil {
						return err
					}
					continue
				}
			}
			if err := f.SetCellStr(xlsxSheetName, cell, v); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}
