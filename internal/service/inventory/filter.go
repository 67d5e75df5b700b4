package inventory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// Apply filters then sorts summaries. The input slice is never modified.
// All predicates are ANDed; a zero-valued predicate passes everything.
// Sorting is stable, so batches with equal keys keep their input order.
func Apply(summaries []models.BatchSummary, filters models.FilterState, order models.SortSpec, loc *time.Location) []models.BatchSummary {
	if loc == nil {
		loc = time.UTC
	}
	match := compileFilters(filters, loc)

	out := make([]models.BatchSummary, 0, len(summaries))
	for _, s := range summaries {
		if match(s) {
			out = append(out, s)
		}
	}

	compare := comparator(order.Key)
	desc := order.Direction == models.SortDesc
	slices.SortStableFunc(out, func(a, b models.BatchSummary) int {
		c := compare(a, b)
		if desc {
			return -c
		}
		return c
	})

	return out
}

type predicate func(models.BatchSummary) bool

func compileFilters(f models.FilterState, loc *time.Location) predicate {
	var preds []predicate

	if f.Search != "" {
		query := strings.ToLower(f.Search)
		preds = append(preds, func(s models.BatchSummary) bool {
			return strings.Contains(strings.ToLower(string(s.BatchNumber)), query) ||
				strings.Contains(strings.ToLower(s.FromDate), query) ||
				strings.Contains(strings.ToLower(s.ToDate), query)
		})
	}

	if day, ok := parseDay(f.DateFrom, loc); ok {
		preds = append(preds, func(s models.BatchSummary) bool {
			return !s.CreatedAt.IsZero() && !s.CreatedAt.Before(day)
		})
	}

	if day, ok := parseDay(f.DateTo, loc); ok {
		end := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		preds = append(preds, func(s models.BatchSummary) bool {
			to := s.UpdatedAt
			if to.IsZero() {
				to = s.CreatedAt
			}
			return !to.After(end)
		})
	}

	if status := strings.ToLower(strings.TrimSpace(f.Status)); status != "" && status != models.StatusFilterAll {
		preds = append(preds, func(s models.BatchSummary) bool {
			return string(s.Status) == status
		})
	}

	if f.DefectRateThreshold > 0 {
		threshold := f.DefectRateThreshold
		preds = append(preds, func(s models.BatchSummary) bool {
			return s.DefectRate() >= threshold
		})
	}

	if len(f.Sizes) > 0 {
		sizes := slices.Clone(f.Sizes)
		preds = append(preds, func(s models.BatchSummary) bool {
			for _, size := range sizes {
				if s.SizeBreakdown.Count(size) > 0 {
					return true
				}
			}
			return false
		})
	}

	return func(s models.BatchSummary) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func comparator(key models.SortKey) func(a, b models.BatchSummary) int {
	switch key {
	case models.SortByDate:
		return func(a, b models.BatchSummary) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	case models.SortByTotalEggs:
		return func(a, b models.BatchSummary) int {
			return cmp.Compare(a.TotalEggs, b.TotalEggs)
		}
	case models.SortByDefectRate:
		return func(a, b models.BatchSummary) int {
			return cmp.Compare(a.DefectRate(), b.DefectRate())
		}
	case models.SortByBatchNumber:
		// Collators are not safe for concurrent use; one per sort.
		collator := collate.New(language.English)
		return func(a, b models.BatchSummary) int {
			return collator.CompareString(string(a.BatchNumber), string(b.BatchNumber))
		}
	default:
		return func(models.BatchSummary, models.BatchSummary) int { return 0 }
	}
}

// parseDay parses a YYYY-MM-DD filter value into the start of that day in loc.
func parseDay(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dayLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
