package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	energy "home-energy/internal/energy/domain"
	"home-energy/internal/locale"
	metering "home-energy/internal/metering/domain"
)

var exportTypes = []metering.EnergyType{
	metering.Electricity,
	metering.Gas,
	metering.Water,
}

// BuildDailyCostsPDF renders the daily cost table as a PDF.
func BuildDailyCostsPDF(rows []energy.DailyCostRow, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Energy Costs")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(28, 6, "Day", "1", 0, "C", false, 0, "")
	for _, energyType := range exportTypes {
		pdf.CellFormat(38, 6, string(energyType), "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(38, 6, fmt.Sprintf("Total (%s)", currency), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	var total float64
	for _, row := range rows {
		pdf.CellFormat(28, 6, row.Day.Format("02.01.2006"), "1", 0, "C", false, 0, "")
		for _, energyType := range exportTypes {
			pdf.CellFormat(38, 6, locale.FormatNumber(row.Cost[energyType], 2), "1", 0, "R", false, 0, "")
		}
		pdf.CellFormat(38, 6, locale.FormatNumber(row.TotalCost, 2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total += row.TotalCost
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(28+3*38, 6, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(38, 6, locale.FormatNumber(total, 2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyCostsXLSX renders the daily cost table as an XLSX workbook.
func BuildDailyCostsXLSX(rows []energy.DailyCostRow, currency string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "daily costs"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Day")
	column := 'B'
	for _, energyType := range exportTypes {
		_ = f.SetCellValue(sheet, fmt.Sprintf("%c1", column), fmt.Sprintf("%s consumption", energyType))
		_ = f.SetCellValue(sheet, fmt.Sprintf("%c1", column+1), fmt.Sprintf("%s cost (%s)", energyType, currency))
		column += 2
	}
	_ = f.SetCellValue(sheet, fmt.Sprintf("%c1", column), fmt.Sprintf("Total (%s)", currency))

	for i, row := range rows {
		line := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Day.Format("2006-01-02"))
		column = 'B'
		for _, energyType := range exportTypes {
			_ = f.SetCellValue(sheet, fmt.Sprintf("%c%d", column, line), row.Consumption[energyType])
			_ = f.SetCellValue(sheet, fmt.Sprintf("%c%d", column+1, line), row.Cost[energyType])
			column += 2
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("%c%d", column, line), row.TotalCost)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
