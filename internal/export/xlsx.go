package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

// XLSX writes the report as a single-sheet workbook: a title row, a header
// row, one row per housekeeper and a totals row.
func XLSX(r Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	_ = f.SetColWidth(reportSheet, "A", "A", 28)
	_ = f.SetColWidth(reportSheet, "B", "D", 16)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	_ = f.SetCellValue(reportSheet, "A1", fmt.Sprintf("%s (%s)", r.Title, r.period()))
	_ = f.MergeCell(reportSheet, "A1", "D1")

	header := []any{"Housekeeper", "Rooms cleaned", "Total minutes", "Average minutes"}
	if err := f.SetSheetRow(reportSheet, "A2", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	_ = f.SetCellStyle(reportSheet, "A2", "D2", headerStyle)

	line := 3
	for _, rw := range r.rows() {
		values := []any{rw.name, rw.TotalRooms, rw.TotalTime, rw.AverageTime}
		if err := f.SetSheetRow(reportSheet, cell("A", line), &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", line, err)
		}
		line++
	}

	rooms, minutes := r.totals()
	totals := []any{"Total", rooms, minutes}
	if err := f.SetSheetRow(reportSheet, cell("A", line), &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	_ = f.SetCellStyle(reportSheet, cell("A", line), cell("D", line), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
