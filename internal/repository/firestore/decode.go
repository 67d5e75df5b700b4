package firestore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// decodeBatch maps a raw batch document onto RawBatchRecord without
// interpreting counters or status; that is left to the aggregator.
func decodeBatch(docID string, data map[string]any) models.RawBatchRecord {
	record := models.RawBatchRecord{
		DocID:     docID,
		ID:        stringField(data["id"]),
		Name:      stringField(data["name"]),
		AccountID: stringField(data["accountId"]),
		Status:    data["status"],
		CreatedAt: decodeTimestamp(data["createdAt"]),
		UpdatedAt: decodeTimestamp(data["updatedAt"]),
	}

	stats, _ := data["stats"].(map[string]any)
	record.Stats = models.RawStats{
		SmallEggs:  stats["smallEggs"],
		MediumEggs: stats["mediumEggs"],
		LargeEggs:  stats["largeEggs"],
		CrackEggs:  stats["crackEggs"],
		DirtyEggs:  stats["dirtyEggs"],
		GoodEggs:   stats["goodEggs"],
		TotalEggs:  stats["totalEggs"],
	}

	return record
}

// decodeTimestamp recognizes native timestamps, {seconds, nanoseconds}
// objects, bare epoch milliseconds and strings.
func decodeTimestamp(value any) models.RawTimestamp {
	switch v := value.(type) {
	case nil:
		return models.RawTimestamp{}
	case time.Time:
		return models.RawTimestamp{Native: &v}
	case *time.Time:
		if v == nil {
			return models.RawTimestamp{}
		}
		t := *v
		return models.RawTimestamp{Native: &t}
	case map[string]any:
		secs, ok := numberField(v["seconds"])
		if !ok {
			secs, ok = numberField(v["_seconds"])
		}
		if !ok {
			return models.RawTimestamp{}
		}
		nanos, ok := numberField(v["nanoseconds"])
		if !ok {
			nanos, _ = numberField(v["_nanoseconds"])
		}
		total := secs + nanos/float64(time.Second)
		return models.RawTimestamp{Seconds: &total}
	case string:
		return models.RawTimestamp{Text: v}
	default:
		if ms, ok := numberField(v); ok {
			secs := ms / 1000
			return models.RawTimestamp{Seconds: &secs}
		}
		return models.RawTimestamp{Text: fmt.Sprint(v)}
	}
}

func numberField(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
