package tablewriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/clarity-to-csv/internal/types"
)

// SheetName is the worksheet that holds the precinct table.
const SheetName = "Precincts"

// textColumns are kept as text even when they look numeric; precinct ids
// such as "0012" lose their meaning as numbers.
var textColumns = map[string]bool{
	types.ColumnPrecinctID:  true,
	types.ColumnContestName: true,
}

// WriteXLSX writes table to w as a single-sheet workbook. Integer cells are
// stored as numbers and empty cells are left blank.
func WriteXLSX(w io.Writer, table *types.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]interface{}, len(table.Header))
	for i, name := range table.Header {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for col, value := range row {
			cells[col] = cellValue(table, col, value)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(table *types.Table, col int, value string) interface{} {
	if value == "" {
		return nil
	}
	if col < len(table.Header) && textColumns[table.Header[col]] {
		return value
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}
