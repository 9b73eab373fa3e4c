package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

func testSummary(chatID int64, date string, total, norm int) domain.DaySummary {
	return domain.DaySummary{ChatID: chatID, Date: date, Total: total, Norm: norm}
}

func TestSubmitCreatesWorkbookAndRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.xlsx")
	w := New(path, zap.NewNop())

	if err := w.Submit(context.Background(), testSummary(42, "2025-07-10", 2100, 2000)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open written workbook: %v", err)
	}
	defer f.Close()

	const sheet = "July_2025"
	got, err := f.GetCellValue(sheet, "A2")
	if err != nil || got != "2025-07-10" {
		t.Fatalf("A2 = %q (%v), want 2025-07-10", got, err)
	}
	if got, _ := f.GetCellValue(sheet, "B2"); got != "42" {
		t.Fatalf("B2 = %q, want 42", got)
	}
	if got, _ := f.GetCellValue(sheet, "E2"); got != "105.0%" {
		t.Fatalf("E2 = %q, want 105.0%%", got)
	}
	if got, _ := f.GetCellValue(sheet, "F2"); got != "Met" {
		t.Fatalf("F2 = %q, want Met", got)
	}
	if got, _ := f.GetCellValue(sheet, "A1"); got != "Date" {
		t.Fatalf("header A1 = %q, want Date", got)
	}
}

func TestSubmitSameUserDateOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.xlsx")
	w := New(path, zap.NewNop())
	ctx := context.Background()

	if err := w.Submit(ctx, testSummary(42, "2025-07-10", 1200, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Submit(ctx, testSummary(42, "2025-07-10", 2200, 2000)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	const sheet = "July_2025"
	if got, _ := f.GetCellValue(sheet, "C2"); got != "2200" {
		t.Fatalf("C2 = %q, want updated total 2200", got)
	}
	if got, _ := f.GetCellValue(sheet, "F2"); got != "Met" {
		t.Fatalf("F2 = %q, want Met after update", got)
	}
	// No duplicate appended below.
	if got, _ := f.GetCellValue(sheet, "A3"); got != "" {
		t.Fatalf("A3 = %q, want empty (single logical row)", got)
	}
}

func TestSubmitDistinctUsersAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.xlsx")
	w := New(path, zap.NewNop())
	ctx := context.Background()

	if err := w.Submit(ctx, testSummary(1, "2025-07-10", 900, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Submit(ctx, testSummary(2, "2025-07-10", 1700, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Submit(ctx, testSummary(1, "2025-07-11", 2500, 2000)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	const sheet = "July_2025"
	for cell, want := range map[string]string{
		"B2": "1", "B3": "2", "B4": "1",
		"A4": "2025-07-11",
		"F2": "Missed",
	} {
		if got, _ := f.GetCellValue(sheet, cell); got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestSubmitNewMonthNewSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.xlsx")
	w := New(path, zap.NewNop())
	ctx := context.Background()

	if err := w.Submit(ctx, testSummary(1, "2025-07-31", 2000, 2000)); err != nil {
		t.Fatal(err)
	}
	if err := w.Submit(ctx, testSummary(1, "2025-08-01", 1500, 2000)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("August_2025", "A2"); got != "2025-08-01" {
		t.Fatalf("August_2025!A2 = %q", got)
	}
	if got, _ := f.GetCellValue("July_2025", "A2"); got != "2025-07-31" {
		t.Fatalf("July_2025!A2 = %q", got)
	}
}
