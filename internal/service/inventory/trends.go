package inventory

import (
	"sort"
	"time"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// MaxTrendPoints is the number of most recent day buckets kept in a trend.
const MaxTrendPoints = 7

type dayBucket struct {
	day          time.Time
	totalEggs    int
	totalDefects int
	batches      int
}

// ComputeTrends buckets summaries by the calendar day of CreatedAt (in loc)
// and returns the defect-rate and production series for the latest days
// that have at least one batch. Summaries without a creation instant are skipped.
func ComputeTrends(summaries []models.BatchSummary, loc *time.Location) models.Trends {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[string]*dayBucket)
	for _, s := range summaries {
		if s.CreatedAt.IsZero() {
			continue
		}
		local := s.CreatedAt.In(loc)
		key := local.Format(dayLayout)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{day: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)}
			buckets[key] = b
		}
		b.totalEggs += s.TotalEggs
		b.totalDefects += s.DefectEggs
		b.batches++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MaxTrendPoints {
		keys = keys[len(keys)-MaxTrendPoints:]
	}

	trends := models.Trends{
		DefectTrend:     make([]models.TrendPoint, 0, len(keys)),
		ProductionTrend: make([]models.TrendPoint, 0, len(keys)),
	}
	for _, k := range keys {
		b := buckets[k]
		var rate float64
		if b.totalEggs > 0 {
			rate = float64(b.totalDefects) / float64(b.totalEggs) * 100
		}
		label := b.day.Format(dayLabelLayout)
		trends.DefectTrend = append(trends.DefectTrend, models.TrendPoint{
			Date: k, DateLabel: label, Value: rate, SampleCount: b.batches,
		})
		trends.ProductionTrend = append(trends.ProductionTrend, models.TrendPoint{
			Date: k, DateLabel: label, Value: float64(b.totalEggs), SampleCount: b.batches,
		})
	}

	trends.DefectChange = TrendDelta(trends.DefectTrend)
	trends.ProductionChange = TrendDelta(trends.ProductionTrend)
	return trends
}

// TrendDelta returns the percent change of the latest point against the one
// before it. A zero previous value reports 0, so a 0 -> N jump shows no change.
func TrendDelta(points []models.TrendPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	latest := points[len(points)-1].Value
	previous := points[len(points)-2].Value
	if previous == 0 {
		return 0
	}
	return (latest - previous) / previous * 100
}
