package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mamadbah2/megg/internal/domain/models"
)

type fakeSheet struct {
	sheetRange string
	rows       [][]interface{}
	err        error
}

func (f *fakeSheet) ReplaceRange(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.sheetRange, f.rows = sheetRange, rows
	return f.err
}

func (f *fakeSheet) AppendRows(context.Context, string, [][]interface{}) error {
	return errors.New("not used")
}

func summaries() []models.BatchSummary {
	return []models.BatchSummary{
		{
			BatchNumber:   "B-1",
			TotalEggs:     300,
			GoodEggs:      290,
			DefectEggs:    10,
			SizeBreakdown: models.SizeBreakdown{Small: 100, Medium: 150, Large: 40, Defect: 10},
			Status:        models.StatusActive,
			CreatedAt:     time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
			FromDate:      "3/5/2024, 2:30:00 PM",
			ToDate:        "3/5/2024, 3:00:00 PM",
		},
		{Status: models.StatusNotActive},
	}
}

func TestRows(t *testing.T) {
	got := Rows(summaries())
	want := []Row{
		{
			BatchNumber: "B-1", TotalEggs: 300, TotalSort: 290, DefectEggs: 10, DefectRate: 3.33,
			SmallEggs: 100, MediumEggs: 150, LargeEggs: 40, Status: "Active",
			FromDate: "3/5/2024, 2:30:00 PM", ToDate: "3/5/2024, 3:00:00 PM", CreatedAt: "3/5/2024, 2:30:00 PM",
		},
		{BatchNumber: "Unknown", Status: "Not Active", FromDate: "N/A", ToDate: "N/A", CreatedAt: "N/A"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, 3, 6, 9, 5, 0, 0, time.UTC)
	if err := WriteCSV(&buf, Rows(summaries()[:1]), generated); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"Inventory Batches Report",
		`"Generated on: 3/6/2024, 9:05:00 AM"`,
		"",
		"Batch Number,Total Eggs,Total Sort,Defect Eggs,Defect Rate (%),Small Eggs,Medium Eggs,Large Eggs,Status,From Date,To Date,Created At",
		`B-1,300,290,10,3.33,100,150,40,Active,"3/5/2024, 2:30:00 PM","3/5/2024, 3:00:00 PM","3/5/2024, 2:30:00 PM"`,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestPushToSheet(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(sheet, "Inventory!A:L", nil)

	if err := svc.PushToSheet(context.Background(), Rows(summaries())); err != nil {
		t.Fatalf("PushToSheet: %v", err)
	}
	if sheet.sheetRange != "Inventory!A:L" {
		t.Fatalf("range = %q", sheet.sheetRange)
	}
	if len(sheet.rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(sheet.rows))
	}
	if sheet.rows[0][0] != "Batch Number" || sheet.rows[1][0] != "B-1" || sheet.rows[1][1] != 300 {
		t.Fatalf("unexpected values: %v", sheet.rows[:2])
	}
}

func TestPushToSheetErrors(t *testing.T) {
	if err := NewService(nil, "", nil).PushToSheet(context.Background(), nil); !errors.Is(err, ErrSheetsDisabled) {
		t.Fatalf("err = %v, want ErrSheetsDisabled", err)
	}

	boom := errors.New("quota exceeded")
	err := NewService(&fakeSheet{err: boom}, "A:L", nil).PushToSheet(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped sheet error", err)
	}
}
