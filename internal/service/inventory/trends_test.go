package inventory

import (
	"testing"
	"time"

	"github.com/mamadbah2/megg/internal/domain/models"
)

func TestComputeTrendsBucketsByDay(t *testing.T) {
	d1 := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	trends := ComputeTrends([]models.BatchSummary{
		batch("A", 100, 10, d1),
		batch("B", 100, 30, d1.Add(3*time.Hour)),
		batch("C", 300, 0, d2),
		batch("D", 50, 5, time.Time{}),
	}, time.UTC)

	if len(trends.DefectTrend) != 2 || len(trends.ProductionTrend) != 2 {
		t.Fatalf("got %d/%d points, want 2/2", len(trends.DefectTrend), len(trends.ProductionTrend))
	}

	first := trends.DefectTrend[0]
	if first.Date != "2024-03-05" || first.DateLabel != "Mar 5" {
		t.Fatalf("first point = %+v", first)
	}
	if first.Value != 20 || first.SampleCount != 2 {
		t.Fatalf("first defect point value/count = %v/%d, want 20/2", first.Value, first.SampleCount)
	}
	if trends.ProductionTrend[0].Value != 200 || trends.ProductionTrend[1].Value != 300 {
		t.Fatalf("production values = %v, %v", trends.ProductionTrend[0].Value, trends.ProductionTrend[1].Value)
	}
	if trends.ProductionChange != 50 {
		t.Fatalf("production change = %v, want 50", trends.ProductionChange)
	}
	if trends.DefectChange != -100 {
		t.Fatalf("defect change = %v, want -100", trends.DefectChange)
	}
}

func TestComputeTrendsKeepsLatestDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var summaries []models.BatchSummary
	for i := 9; i >= 0; i-- {
		summaries = append(summaries, batch("B", 10*(i+1), 0, start.AddDate(0, 0, i)))
	}

	trends := ComputeTrends(summaries, time.UTC)
	if len(trends.ProductionTrend) != MaxTrendPoints {
		t.Fatalf("got %d points, want %d", len(trends.ProductionTrend), MaxTrendPoints)
	}
	if got := trends.ProductionTrend[0].Date; got != "2024-03-04" {
		t.Fatalf("oldest kept day = %s, want 2024-03-04", got)
	}
	if got := trends.ProductionTrend[MaxTrendPoints-1].Date; got != "2024-03-10" {
		t.Fatalf("latest day = %s, want 2024-03-10", got)
	}
	for i := 1; i < len(trends.ProductionTrend); i++ {
		if trends.ProductionTrend[i-1].Date >= trends.ProductionTrend[i].Date {
			t.Fatalf("points not ascending at %d", i)
		}
	}
}

func TestComputeTrendsUsesLocationDay(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	trends := ComputeTrends([]models.BatchSummary{
		batch("A", 10, 0, time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)),
	}, manila)

	if got := trends.ProductionTrend[0].Date; got != "2024-03-06" {
		t.Fatalf("bucket = %s, want local day 2024-03-06", got)
	}
}

func TestComputeTrendsEmpty(t *testing.T) {
	trends := ComputeTrends(nil, nil)
	if len(trends.DefectTrend) != 0 || trends.DefectChange != 0 || trends.ProductionChange != 0 {
		t.Fatalf("empty trends = %+v", trends)
	}
}

func TestTrendDelta(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"no points", nil, 0},
		{"single point", []float64{10}, 0},
		{"increase", []float64{5, 100, 150}, 50},
		{"decrease", []float64{200, 100}, -50},
		{"previous zero", []float64{0, 40}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := make([]models.TrendPoint, len(tt.values))
			for i, v := range tt.values {
				points[i] = models.TrendPoint{Value: v}
			}
			if got := TrendDelta(points); got != tt.want {
				t.Fatalf("TrendDelta = %v, want %v", got, tt.want)
			}
		})
	}
}
