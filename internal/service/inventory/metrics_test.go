package inventory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// batch builds a summary with the given totals created at the given instant.
func batch(id string, total, defect int, created time.Time) models.BatchSummary {
	return models.BatchSummary{
		BatchNumber: models.BatchID(id),
		TotalEggs:   total,
		GoodEggs:    total - defect,
		DefectEggs:  defect,
		SizeBreakdown: models.SizeBreakdown{
			Medium: total - defect,
			Defect: defect,
		},
		Status:    models.StatusNotActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestComputeFleetMetrics(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	a := batch("A", 100, 10, day)
	a.Status = models.StatusActive
	b := batch("B", 50, 0, day)
	c := batch("C", 0, 0, day)

	got := ComputeFleetMetrics([]models.BatchSummary{a, b, c})
	want := models.FleetMetrics{
		TotalBatches:         3,
		TotalEggs:            150,
		ActiveBatches:        1,
		AvgDefectRatePercent: 3.33,
		AvgDefectRate:        "3.33",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFleetMetricsEmpty(t *testing.T) {
	got := ComputeFleetMetrics(nil)
	want := models.FleetMetrics{AvgDefectRate: "0.00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFleetMetricsUsesUnweightedMean(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	// 50% on 10 eggs and 0% on 990 eggs: pooled rate would be 0.5%.
	got := ComputeFleetMetrics([]models.BatchSummary{
		batch("A", 10, 5, day),
		batch("B", 990, 0, day),
	})
	if got.AvgDefectRatePercent != 25 {
		t.Fatalf("avg defect rate = %v, want 25", got.AvgDefectRatePercent)
	}
	if got.AvgDefectRate != "25.00" {
		t.Fatalf("avg defect rate string = %q, want 25.00", got.AvgDefectRate)
	}
}
