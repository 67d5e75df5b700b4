package inventory

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/megg/internal/domain/models"
)

const (
	timeLayout     = "3:04:05 PM"
	dateTimeLayout = "1/2/2006, 3:04:05 PM"
	dayLayout      = "2006-01-02"
	dayLabelLayout = "Jan 2"
)

// textTimestampLayouts are tried in order when a timestamp arrives as a string.
// Layouts without a zone are interpreted in the aggregator location.
var textTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	dateTimeLayout,
}

// Aggregator converts raw batch documents into summaries. It is the only
// place where loosely typed document fields are interpreted.
type Aggregator struct {
	loc *time.Location
	now func() time.Time
}

// NewAggregator builds an aggregator rendering display strings in loc (UTC when nil).
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc, now: time.Now}
}

// Location returns the location used for display strings and day buckets.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate normalizes one raw record. It never fails: malformed fields fall
// back to zero counts and the current instant.
func (a *Aggregator) Aggregate(raw models.RawBatchRecord) models.BatchSummary {
	created, ok := a.normalizeTimestamp(raw.CreatedAt)
	if !ok {
		created = a.now()
	}
	updated, ok := a.normalizeTimestamp(raw.UpdatedAt)
	if !ok {
		updated = created
	}
	created = created.In(a.loc)
	updated = updated.In(a.loc)

	small := toCount(raw.Stats.SmallEggs)
	medium := toCount(raw.Stats.MediumEggs)
	large := toCount(raw.Stats.LargeEggs)
	defect := toCount(raw.Stats.CrackEggs) + toCount(raw.Stats.DirtyEggs)

	good := small + medium + large
	if isNumber(raw.Stats.GoodEggs) {
		good = toCount(raw.Stats.GoodEggs)
	}

	total := toCount(raw.Stats.TotalEggs)
	if total == 0 {
		total = good + defect
	}

	sizes := models.SizeBreakdown{Small: small, Medium: medium, Large: large, Defect: defect}

	return models.BatchSummary{
		BatchNumber:   raw.ResolveBatchID(),
		TotalEggs:     total,
		GoodEggs:      good,
		DefectEggs:    defect,
		SizeBreakdown: sizes,
		CommonSize:    commonSize(sizes),
		Status:        NormalizeStatus(raw.Status),
		CreatedAt:     created,
		UpdatedAt:     updated,
		TimeRange:     created.Format(timeLayout) + " - " + updated.Format(timeLayout),
		FromDate:      created.Format(dateTimeLayout),
		ToDate:        updated.Format(dateTimeLayout),
	}
}

// AggregateAll aggregates every record, preserving order.
func (a *Aggregator) AggregateAll(records []models.RawBatchRecord) []models.BatchSummary {
	out := make([]models.BatchSummary, 0, len(records))
	for _, r := range records {
		out = append(out, a.Aggregate(r))
	}
	return out
}

// NormalizeStatus maps "active" (any case) to StatusActive and everything else to StatusNotActive.
func NormalizeStatus(value any) models.Status {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case models.Status:
		s = string(v)
	default:
		return models.StatusNotActive
	}
	if strings.EqualFold(strings.TrimSpace(s), string(models.StatusActive)) {
		return models.StatusActive
	}
	return models.StatusNotActive
}

func (a *Aggregator) normalizeTimestamp(ts models.RawTimestamp) (time.Time, bool) {
	if ts.Native != nil && !ts.Native.IsZero() {
		return *ts.Native, true
	}
	if ts.Seconds != nil {
		sec := *ts.Seconds
		if !math.IsNaN(sec) && !math.IsInf(sec, 0) {
			whole, frac := math.Modf(sec)
			return time.Unix(int64(whole), int64(frac*float64(time.Second))), true
		}
	}
	text := strings.TrimSpace(ts.Text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range textTimestampLayouts {
		if t, err := time.ParseInLocation(layout, text, a.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func commonSize(b models.SizeBreakdown) string {
	best, bestCount := models.SizeUnknown, 0
	for _, pair := range []struct {
		label string
		count int
	}{
		{models.SizeSmall, b.Small},
		{models.SizeMedium, b.Medium},
		{models.SizeLarge, b.Large},
	} {
		if pair.count > bestCount {
			best, bestCount = pair.label, pair.count
		}
	}
	return best
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// toCount coerces a document value to a non-negative egg count.
func toCount(value any) int {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f >= math.MaxInt64 {
		return 0
	}
	return int(f)
}
