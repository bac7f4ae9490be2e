// =============================================================================
// Clarity to CSV - Terminal Tables
// =============================================================================
//
// Every command that prints tabular output (contests, process, analyze) goes
// through renderTable, so tables share one style and one alignment rule:
// the first column is a label and stays left-aligned; any other column whose
// cells are all numbers ("1,204", "57.1%") is right-aligned.
//
// Numbers are formatted with go-humanize before they reach the table.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// =============================================================================
// RENDERING
// =============================================================================

// renderTable draws rows under headers. Short rows are padded with blanks.
func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i, right := range numericColumns(columns, rows) {
		align := text.AlignLeft
		if right {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// numericColumns reports, per column, whether every non-empty cell is a
// number. The first column never counts, and neither does a column with no
// values at all.
func numericColumns(columns int, rows [][]string) []bool {
	numeric := make([]bool, columns)
	for col := 1; col < columns; col++ {
		seen := false
		numeric[col] = true
		for _, row := range rows {
			if col >= len(row) || row[col] == "" {
				continue
			}
			seen = true
			if !isNumber(row[col]) {
				numeric[col] = false
				break
			}
		}
		numeric[col] = numeric[col] && seen
	}
	return numeric
}

func isNumber(cell string) bool {
	cell = strings.TrimSuffix(strings.ReplaceAll(cell, ",", ""), "%")
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}

// =============================================================================
// CELL FORMATTING
// =============================================================================

// count formats an integer with thousands separators.
func count(n int) string {
	return humanize.Comma(int64(n))
}

// quantity formats a float with thousands separators and no trailing zeros.
func quantity(n float64) string {
	return humanize.Commaf(n)
}

// percent formats a ratio as a percentage with one decimal.
func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
