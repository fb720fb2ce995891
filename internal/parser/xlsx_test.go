package parser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSXParser_SheetsBecomeTables(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Product")
	f.SetCellValue("Sheet1", "B1", "Units")
	f.SetCellValue("Sheet1", "A2", "Widget")
	f.SetCellValue("Sheet1", "B2", 12)
	if _, err := f.NewSheet("Empty"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	p := &XLSXParser{}
	tree, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected only the non-empty sheet, got %d", len(tree.Children))
	}
	if tree.Children[0].Title != "Sheet1" {
		t.Errorf("expected sheet title, got %q", tree.Children[0].Title)
	}
	want := "| Product | Units |\n| --- | --- |\n| Widget | 12 |"
	if tree.Children[0].Text != want {
		t.Errorf("expected %q, got %q", want, tree.Children[0].Text)
	}
}
