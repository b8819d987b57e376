package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
)

const (
	sheetHoldings  = "Holdings"
	sheetByAccount = "By Account"
)

// WriteExcel writes the cleaned holdings and the per-account summary to w
// as an xlsx workbook. The summary sheet is skipped when summary is nil.
func WriteExcel(w io.Writer, cleaned, summary *holdings.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetHoldings)
	if err := writeSheet(f, sheetHoldings, cleaned); err != nil {
		return err
	}

	if summary != nil {
		if _, err := f.NewSheet(sheetByAccount); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := writeSheet(f, sheetByAccount, summary); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteExcelFile writes the workbook to disk, creating parent directories
// as needed.
func WriteExcelFile(path string, cleaned, summary *holdings.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return WriteExcel(file, cleaned, summary)
}

func writeSheet(f *excelize.File, sheet string, ds *holdings.Dataset) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, name := range ds.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(ds.Columns), 1)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for row := 0; row < ds.Len(); row++ {
		for col, name := range ds.Columns {
			cell, err := ds.Cell(row, name)
			if err != nil {
				return err
			}
			ref, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if cell.Numeric {
				err = f.SetCellValue(sheet, ref, cell.Number)
			} else {
				err = f.SetCellValue(sheet, ref, cell.Text)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
