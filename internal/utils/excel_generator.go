package utils

import (
	"fmt"

	"chemequip/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	equipmentSheet = "Equipment"
	summarySheet   = "Summary"
)

// CreateExcelReport builds a workbook with the readings, the summary and a
// type distribution chart. The caller owns the returned file and must Close it.
func CreateExcelReport(summary *models.EquipmentSummary, items []models.Equipment) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", equipmentSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillEquipmentSheet(f, items); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to fill equipment sheet: %w", err)
	}
	if err := fillSummarySheet(f, summary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to fill summary sheet: %w", err)
	}

	index, err := f.GetSheetIndex(equipmentSheet)
	if err == nil {
		f.SetActiveSheet(index)
	}

	return f, nil
}

func fillEquipmentSheet(f *excelize.File, items []models.Equipment) error {
	headers := []interface{}{"ID", "Name", "Type", "Flowrate", "Pressure", "Temperature"}
	if err := f.SetSheetRow(equipmentSheet, "A1", &headers); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(equipmentSheet, "A1", "F1", headerStyle); err != nil {
		return err
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{item.ID, item.Name, item.Type, item.Flowrate, item.Pressure, item.Temperature}
		if err := f.SetSheetRow(equipmentSheet, cell, &row); err != nil {
			return err
		}
	}

	if len(items) > 0 {
		numberStyle, err := getNumberStyle(f, "0.00")
		if err != nil {
			return err
		}
		last := fmt.Sprintf("F%d", len(items)+1)
		if err := f.SetCellStyle(equipmentSheet, "D2", last, numberStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(equipmentSheet, "A", "A", 8); err != nil {
		return err
	}
	return f.SetColWidth(equipmentSheet, "B", "F", 18)
}

func fillSummarySheet(f *excelize.File, summary *models.EquipmentSummary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Total Equipment", summary.Total},
		{"Average Flowrate", summary.AvgFlowrate},
		{"Average Pressure", summary.AvgPressure},
		{"Average Temperature", summary.AvgTemperature},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	numberStyle, err := getNumberStyle(f, "0.00")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "B2", "B4", numberStyle); err != nil {
		return err
	}

	// distribution table starts below the totals
	const tableRow = 6
	header := []interface{}{"Type", "Count"}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", tableRow), &header); err != nil {
		return err
	}
	for i, bucket := range summary.TypeDistribution {
		row := []interface{}{bucket.Type, bucket.Count}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", tableRow+1+i), &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "B", 22); err != nil {
		return err
	}

	if len(summary.TypeDistribution) == 0 {
		return nil
	}

	first, last := tableRow+1, tableRow+len(summary.TypeDistribution)
	return f.AddChart(summarySheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       "Count",
				Categories: fmt.Sprintf("%s!$A$%d:$A$%d", summarySheet, first, last),
				Values:     fmt.Sprintf("%s!$B$%d:$B$%d", summarySheet, first, last),
			},
		},
		Title: []excelize.RichTextRun{
			{Text: "Equipment Type Distribution"},
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
		},
		Dimension: excelize.ChartDimension{
			Width:  600,
			Height: 360,
		},
	})
}

func getNumberStyle(f *excelize.File, format string) (int, error) {
	return f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
	})
}
