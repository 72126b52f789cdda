// Package export renders display tables as spreadsheets.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the shelter table.
const SheetName = "Укриття"

// Column positions of the numeric and link cells within DisplayColumns.
const (
	areaColumn     = 4
	capacityColumn = 8
	linkColumn     = 10
)

// WriteXLSX writes the rows as a single-sheet workbook with a header row in
// DisplayColumns order. Area and capacity are numeric cells; unknown values
// are left empty.
func WriteXLSX(w io.Writer, rows []domain.DisplayShelter) error {
	f, err := build(rows)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path, creating parent directories.
func SaveXLSX(path string, rows []domain.DisplayShelter) error {
	f, err := build(rows)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func build(rows []domain.DisplayShelter) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := lo.Map(domain.DisplayColumns, func(c string, _ int) any { return c })
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(domain.DisplayColumns))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", bold)

	for i, d := range rows {
		r := i + 2
		cells := lo.Map(d.Row(), func(v string, _ int) any { return v })
		if d.Area != nil {
			cells[areaColumn] = *d.Area
		}
		if d.Capacity != nil {
			cells[capacityColumn] = *d.Capacity
		}
		start, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(SheetName, start, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r, err)
		}
		if d.MapLink != "" {
			link, _ := excelize.CoordinatesToCellName(linkColumn+1, r)
			_ = f.SetCellHyperLink(SheetName, link, d.MapLink, "External")
		}
	}

	if len(rows) > 0 {
		_ = f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), nil)
	}
	return f, nil
}
