package export

import (
	"fmt"
	"time"

	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/xuri/excelize/v2"
)

// ToXLSX сохраняет результат в Excel файл.
// Первая строка - заголовок с именами колонок, NULL пишется пустой ячейкой.
func ToXLSX(result *executor.Result, path, sheetName string) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("result is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 22}) // m/d/yy h:mm

	for col, name := range result.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range result.Rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if _, ok := v.(time.Time); ok {
				f.SetCellStyle(sheetName, cell, cell, dateStyle)
			}
		}
	}

	if n := len(result.Columns); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		f.SetColWidth(sheetName, "A", last, 15)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	return writeFile(path, buf.Bytes(), result.Len())
}

// FromXLSX читает лист Excel: первая строка - заголовок, остальные - данные.
// Пустой sheetName означает первый лист.
func FromXLSX(path, sheetName string) (*executor.Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	header := rows[0]
	return executor.FromStrings(header, padRows(rows[1:], len(header))), nil
}
