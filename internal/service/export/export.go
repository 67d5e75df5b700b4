package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/megg/internal/domain/models"
	repo "github.com/mamadbah2/megg/internal/repository/sheets"
)

// ErrSheetsDisabled indicates a Sheets export was requested without a configured spreadsheet.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

const createdAtLayout = "1/2/2006, 3:04:05 PM"

// Header lists the export columns in order.
var Header = []string{
	"Batch Number", "Total Eggs", "Total Sort", "Defect Eggs", "Defect Rate (%)",
	"Small Eggs", "Medium Eggs", "Large Eggs", "Status", "From Date", "To Date", "Created At",
}

// Row is one exported batch line.
type Row struct {
	BatchNumber string
	TotalEggs   int
	TotalSort   int
	DefectEggs  int
	DefectRate  float64
	SmallEggs   int
	MediumEggs  int
	LargeEggs   int
	Status      string
	FromDate    string
	ToDate      string
	CreatedAt   string
}

// Rows converts summaries into export rows, keeping their order.
func Rows(summaries []models.BatchSummary) []Row {
	rows := make([]Row, 0, len(summaries))
	for _, s := range summaries {
		batchNumber := string(s.BatchNumber)
		if batchNumber == "" {
			batchNumber = "Unknown"
		}
		rows = append(rows, Row{
			BatchNumber: batchNumber,
			TotalEggs:   s.TotalEggs,
			TotalSort:   s.GoodEggs,
			DefectEggs:  s.SizeBreakdown.Defect,
			DefectRate:  roundRate(s.DefectRate()),
			SmallEggs:   s.SizeBreakdown.Small,
			MediumEggs:  s.SizeBreakdown.Medium,
			LargeEggs:   s.SizeBreakdown.Large,
			Status:      s.Status.Label(),
			FromDate:    orNA(s.FromDate),
			ToDate:      orNA(s.ToDate),
			CreatedAt:   formatCreated(s.CreatedAt),
		})
	}
	return rows
}

func (r Row) strings() []string {
	return []string{
		r.BatchNumber,
		strconv.Itoa(r.TotalEggs),
		strconv.Itoa(r.TotalSort),
		strconv.Itoa(r.DefectEggs),
		strconv.FormatFloat(r.DefectRate, 'f', 2, 64),
		strconv.Itoa(r.SmallEggs),
		strconv.Itoa(r.MediumEggs),
		strconv.Itoa(r.LargeEggs),
		r.Status,
		r.FromDate,
		r.ToDate,
		r.CreatedAt,
	}
}

func (r Row) values() []interface{} {
	return []interface{}{
		r.BatchNumber, r.TotalEggs, r.TotalSort, r.DefectEggs, r.DefectRate,
		r.SmallEggs, r.MediumEggs, r.LargeEggs, r.Status, r.FromDate, r.ToDate, r.CreatedAt,
	}
}

// WriteCSV writes a "Generated on" preamble, a blank line, the header and the rows.
func WriteCSV(w io.Writer, rows []Row, generatedAt time.Time) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Inventory Batches Report"})
	cw.Write([]string{"Generated on: " + generatedAt.Format(createdAtLayout)})
	cw.Write([]string{""})
	cw.Write(Header)
	for _, row := range rows {
		cw.Write(row.strings())
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

// Service pushes exports to Google Sheets.
type Service struct {
	sheets      repo.Repository
	exportRange string
	logger      *zap.Logger
}

// NewService wires a new export service. sheets may be nil when Sheets is not configured.
func NewService(sheets repo.Repository, exportRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheets, exportRange: exportRange, logger: logger}
}

// PushToSheet replaces the export range with the header and rows.
func (s *Service) PushToSheet(ctx context.Context, rows []Row) error {
	if s.sheets == nil {
		return ErrSheetsDisabled
	}

	values := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)
	for _, row := range rows {
		values = append(values, row.values())
	}

	if err := s.sheets.ReplaceRange(ctx, s.exportRange, values); err != nil {
		return fmt.Errorf("push export to sheet: %w", err)
	}

	s.logger.Info("inventory exported to sheet", zap.String("range", s.exportRange), zap.Int("rows", len(rows)))
	return nil
}

func roundRate(rate float64) float64 {
	parsed, _ := strconv.ParseFloat(strconv.FormatFloat(rate, 'f', 2, 64), 64)
	return parsed
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(createdAtLayout)
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
