// internal/output/excel.go
package output

import (
	"fmt"

	"github.com/valpere/ListScrapexter/internal/table"
	"github.com/xuri/excelize/v2"
)

// DefaultExcelMaxCellLength is the maximum characters in a single Excel cell
const DefaultExcelMaxCellLength = 32767

// RenderExcel writes store to a single-sheet workbook with a bold, frozen and
// filterable header row.
func RenderExcel(store *table.Store, sheetName string) ([]byte, error) {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	file := excelize.NewFile()
	defer file.Close()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		if err := file.SetSheetName(defaultSheet, sheetName); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	columns := store.Columns()
	if err := writeExcelRow(file, sheetName, 1, columns); err != nil {
		return nil, err
	}
	for i, n := 0, store.Rows(); i < n; i++ {
		if err := writeExcelRow(file, sheetName, i+2, store.Row(i)); err != nil {
			return nil, err
		}
	}

	if len(columns) > 0 {
		if err := formatExcelHeader(file, sheetName, len(columns)); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeExcelRow(file *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		v = Normalize(v)
		if r := []rune(v); len(r) > DefaultExcelMaxCellLength {
			v = string(r[:DefaultExcelMaxCellLength])
		}
		values[i] = v
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func formatExcelHeader(file *excelize.File, sheet string, columns int) error {
	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := file.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := file.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("failed to add auto filter: %w", err)
	}
	return nil
}
