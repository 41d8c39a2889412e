package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ayodelan/schoolbase-backend/internal/export"
)

const sheetName = "Sheet1"

// XLSX writes the snapshot as a single-sheet workbook mirroring the CSV
// layout: a field/value block, then one block per relation section.
func XLSX(w io.Writer, snap *export.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	row := 1
	if err := setCell(f, 1, row, snap.Label); err != nil {
		return err
	}
	row++

	for _, name := range fieldOrder(snap.Fields) {
		if err := setCell(f, 1, row, name); err != nil {
			return err
		}
		if err := setCell(f, 2, row, cell(snap.Fields[name])); err != nil {
			return err
		}
		row++
	}

	for _, section := range snap.Sections {
		row++
		if err := setCell(f, 1, row, section.Name); err != nil {
			return err
		}
		row++

		switch {
		case section.One != nil:
			for _, col := range section.Columns {
				if err := setCell(f, 1, row, col); err != nil {
					return err
				}
				if err := setCell(f, 2, row, cell(section.One[col])); err != nil {
					return err
				}
				row++
			}
		case len(section.Many) > 0:
			for i, col := range section.Columns {
				if err := setCell(f, i+1, row, col); err != nil {
					return err
				}
			}
			row++
			for _, record := range section.Many {
				for i, col := range section.Columns {
					if err := setCell(f, i+1, row, cell(record[col])); err != nil {
						return err
					}
				}
				row++
			}
		default:
			if err := setCell(f, 1, row, "none"); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheetName, ref, value)
}
