package inventory

import (
	"errors"
	"slices"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// ErrComparisonSize indicates more batches were selected than can be compared.
var ErrComparisonSize = errors.New("comparison accepts at most 3 batches")

// MaxComparedBatches is the largest selection Compare accepts.
const MaxComparedBatches = 3

type comparisonMetric struct {
	key         string
	label       string
	lowerIsBest bool
	value       func(models.BatchSummary) float64
}

var comparisonMetrics = []comparisonMetric{
	{key: "totalEggs", label: "Total Eggs", value: func(s models.BatchSummary) float64 { return float64(s.TotalEggs) }},
	{key: "defectRate", label: "Defect Rate", lowerIsBest: true, value: func(s models.BatchSummary) float64 { return round(s.DefectRate(), 2) }},
	{key: "goodEggs", label: "Good Eggs", value: func(s models.BatchSummary) float64 { return float64(s.GoodEggs) }},
	{key: "defectEggs", label: "Defect Eggs", lowerIsBest: true, value: func(s models.BatchSummary) float64 { return float64(s.DefectEggs) }},
	{key: "small", label: "Small Eggs", value: func(s models.BatchSummary) float64 { return float64(s.SizeBreakdown.Small) }},
	{key: "medium", label: "Medium Eggs", value: func(s models.BatchSummary) float64 { return float64(s.SizeBreakdown.Medium) }},
	{key: "large", label: "Large Eggs", value: func(s models.BatchSummary) float64 { return float64(s.SizeBreakdown.Large) }},
}

// Compare returns the metrics that differ across the selected batches.
// Fewer than two batches yield no fields. When several batches share the
// best value the first one in input order is reported.
func Compare(summaries []models.BatchSummary) ([]models.ComparisonField, error) {
	if len(summaries) > MaxComparedBatches {
		return nil, ErrComparisonSize
	}
	fields := []models.ComparisonField{}
	if len(summaries) < 2 {
		return fields, nil
	}

	for _, metric := range comparisonMetrics {
		values := make([]float64, len(summaries))
		for i, s := range summaries {
			values[i] = metric.value(s)
		}
		lo, hi := slices.Min(values), slices.Max(values)
		if lo == hi {
			continue
		}

		target := hi
		if metric.lowerIsBest {
			target = lo
		}
		best := summaries[slices.Index(values, target)].BatchNumber

		diff := models.Percent{}
		if lo != 0 {
			diff = models.Percent{Value: round((hi-lo)/lo*100, 1), Valid: true}
		}

		fields = append(fields, models.ComparisonField{
			Key:               metric.key,
			FieldLabel:        metric.label,
			PerBatchValues:    values,
			MinValue:          lo,
			MaxValue:          hi,
			PercentDifference: diff,
			BestBatchID:       best,
		})
	}

	return fields, nil
}
