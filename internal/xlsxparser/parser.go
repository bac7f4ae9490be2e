// =============================================================================
// Clarity to CSV - XLSX Table Parser
// =============================================================================
//
// This module reads a precinct table from an XLSX workbook for the analyze
// command. The table is read from one worksheet: the first row is the
// header, every following non-empty row is a data row.
//
// SHEET SELECTION:
//   - An explicit sheet name, if given
//   - Otherwise the sheet this tool writes ("Precincts"), if present
//   - Otherwise the first sheet in the workbook
//
// Cells are read as their raw stored values, so a number formatted as
// "1,204" or "45%" in the spreadsheet is read as 1204 or 0.45.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/clarity-to-csv/internal/tablewriter"
	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// Parse reads a table from the workbook at path.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - sheet: The worksheet to read. Empty selects as described above.
//
// RETURNS:
//   - The table.
//   - An error if the workbook cannot be opened, the sheet does not exist,
//     or the sheet is empty.
func Parse(path, sheet string) (*types.Table, error) {
	// Open the XLSX file.
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := selectSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Get all rows from the sheet.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet '%s': %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet '%s' is empty", path, sheetName)
	}

	return types.NewTable(path, rows), nil
}

// selectSheet returns the sheet to read.
func selectSheet(f *excelize.File, requested string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if requested != "" {
		for _, name := range sheets {
			if name == requested {
				return name, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %v)", requested, sheets)
	}

	for _, name := range sheets {
		if name == tablewriter.SheetName {
			return name, nil
		}
	}
	return sheets[0], nil
}
