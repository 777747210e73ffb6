package export

import (
	"fmt"
	"io"
	"log"

	"github.com/gdpchart/models"
	"github.com/xuri/excelize/v2"
)

const SheetName = "GDP"

var header = []interface{}{"Quarter", "Date", "GDP (Billions of Dollars)"}

// WriteWorkbook writes the series as an .xlsx workbook: one row per quarter
// on the GDP sheet and a column chart of the values next to it.
func WriteWorkbook(w io.Writer, ds *models.Dataset) error {
	if len(ds.Data) == 0 {
		return fmt.Errorf("cannot export an empty dataset")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close workbook: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range ds.Data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{models.QuarterLabel(i, p), p.Date, p.GDP}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "C", 16); err != nil {
		return err
	}

	last := len(ds.Data) + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", SheetName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetName, last),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", SheetName, last),
		}},
		Title:  []excelize.RichTextRun{{Text: ds.Title()}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := f.AddChart(SheetName, "E2", chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	return f.Write(w)
}
