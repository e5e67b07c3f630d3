package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
)

const (
	sheetAssignments     = "Assignments"
	sheetMeans           = "Cluster_Means"
	sheetRepresentatives = "Representatives"
)

// WriteWorkbook saves the assignments, cluster means and representatives
// as three sheets of one xlsx file.
func WriteWorkbook(path string, cfg *config.Config, res *analysis.Result, profiles []Profile) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetAssignments)
	headers := append([]string{"City"}, res.Features...)
	headers = append(headers, "Cluster", "Profile")
	writeHeader(f, sheetAssignments, headers)
	for i, city := range res.Cities {
		row := i + 2
		_, label := res.Assignment.City(i)
		f.SetCellValue(sheetAssignments, fmt.Sprintf("A%d", row), city)
		for d := range res.Features {
			setCell(f, sheetAssignments, d+2, row, res.Raw[i][d])
		}
		setCell(f, sheetAssignments, len(res.Features)+2, row, label)
		setCell(f, sheetAssignments, len(res.Features)+3, row, profiles[label].Name)
	}

	if _, err := f.NewSheet(sheetMeans); err != nil {
		return err
	}
	headers = append([]string{"Cluster", "Profile", "Size"}, res.Features...)
	writeHeader(f, sheetMeans, headers)
	for j, s := range res.Summaries {
		row := j + 2
		f.SetCellValue(sheetMeans, fmt.Sprintf("A%d", row), j)
		f.SetCellValue(sheetMeans, fmt.Sprintf("B%d", row), profiles[j].Name)
		f.SetCellValue(sheetMeans, fmt.Sprintf("C%d", row), s.Size)
		for d := range res.Features {
			if !math.IsNaN(s.Means[d]) {
				setCell(f, sheetMeans, d+4, row, s.Means[d])
			}
		}
	}

	if _, err := f.NewSheet(sheetRepresentatives); err != nil {
		return err
	}
	writeHeader(f, sheetRepresentatives, []string{"Cluster", "Rank", "City", "Distance"})
	row := 2
	for j, reps := range res.Representatives {
		for rank, r := range reps {
			f.SetCellValue(sheetRepresentatives, fmt.Sprintf("A%d", row), j)
			f.SetCellValue(sheetRepresentatives, fmt.Sprintf("B%d", row), rank+1)
			f.SetCellValue(sheetRepresentatives, fmt.Sprintf("C%d", row), r.City)
			f.SetCellValue(sheetRepresentatives, fmt.Sprintf("D%d", row), math.Round(r.Distance*1e4)/1e4)
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
}

func setCell(f *excelize.File, sheet string, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	f.SetCellValue(sheet, cell, v)
}
