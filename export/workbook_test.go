package export

import (
	"bytes"
	"testing"

	"github.com/gdpchart/models"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	ds := &models.Dataset{Data: []models.DataPoint{
		{Date: "1947-01-01", GDP: 243.1},
		{Date: "1947-04-01", GDP: 246.3},
		{Date: "1947-07-01", GDP: 250.1},
	}}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, ds); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != len(ds.Data)+1 {
		t.Fatalf("Expected %d rows, got %d", len(ds.Data)+1, len(rows))
	}
	if rows[0][0] != "Quarter" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][0] != "Q1 1947" || rows[1][1] != "1947-01-01" || rows[1][2] != "243.1" {
		t.Errorf("Unexpected first data row %v", rows[1])
	}
	if rows[3][0] != "Q3 1947" {
		t.Errorf("Unexpected third quarter label %q", rows[3][0])
	}
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, &models.Dataset{}); err == nil {
		t.Errorf("Expected an error for an empty dataset")
	}
}
