package inventory

import (
	"fmt"
	"math"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// ComputeFleetMetrics reduces summaries into portfolio totals. The average
// defect rate is the unweighted mean of the per-batch rates.
func ComputeFleetMetrics(summaries []models.BatchSummary) models.FleetMetrics {
	var metrics models.FleetMetrics
	var rateSum float64

	for _, s := range summaries {
		metrics.TotalEggs += s.TotalEggs
		if s.Status == models.StatusActive {
			metrics.ActiveBatches++
		}
		rateSum += s.DefectRate()
	}
	metrics.TotalBatches = len(summaries)

	if metrics.TotalBatches > 0 {
		metrics.AvgDefectRatePercent = round(rateSum/float64(metrics.TotalBatches), 2)
	}
	metrics.AvgDefectRate = fmt.Sprintf("%.2f", metrics.AvgDefectRatePercent)

	return metrics
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
