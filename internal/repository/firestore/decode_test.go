package firestore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mamadbah2/megg/internal/domain/models"
)

func TestDecodeBatch(t *testing.T) {
	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	record := decodeBatch("doc-7", map[string]any{
		"id":        "B-7",
		"accountId": "acct",
		"status":    "active",
		"createdAt": created,
		"updatedAt": "2024-03-05T15:00:00Z",
		"stats": map[string]any{
			"smallEggs":  int64(12),
			"mediumEggs": 3.5,
			"crackEggs":  "2",
		},
	})

	if record.DocID != "doc-7" || record.ID != "B-7" || record.AccountID != "acct" || record.Name != "" {
		t.Fatalf("identity = %+v", record)
	}
	if record.Status != "active" {
		t.Fatalf("status = %v", record.Status)
	}
	if record.CreatedAt.Native == nil || !record.CreatedAt.Native.Equal(created) {
		t.Fatalf("createdAt = %+v", record.CreatedAt)
	}
	if record.UpdatedAt.Text != "2024-03-05T15:00:00Z" {
		t.Fatalf("updatedAt = %+v", record.UpdatedAt)
	}
	want := models.RawStats{SmallEggs: int64(12), MediumEggs: 3.5, CrackEggs: "2"}
	if diff := cmp.Diff(want, record.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBatchWithoutStats(t *testing.T) {
	record := decodeBatch("doc-1", map[string]any{"name": "Morning run"})
	if record.ResolveBatchID() != "Morning run" {
		t.Fatalf("batch id = %q, want name fallback", record.ResolveBatchID())
	}
	if diff := cmp.Diff(models.RawStats{}, record.Stats); diff != "" {
		t.Fatalf("stats should be empty (-want +got):\n%s", diff)
	}
	if !record.CreatedAt.IsZero() || !record.UpdatedAt.IsZero() {
		t.Fatalf("timestamps should be absent: %+v / %+v", record.CreatedAt, record.UpdatedAt)
	}
}

func TestDecodeTimestamp(t *testing.T) {
	tests := []struct {
		name        string
		value       any
		wantSeconds float64
	}{
		{"seconds object", map[string]any{"seconds": int64(1709649000), "nanoseconds": int64(500000000)}, 1709649000.5},
		{"underscore seconds object", map[string]any{"_seconds": 1709649000.0, "_nanoseconds": 0}, 1709649000},
		{"epoch milliseconds", int64(1709649000000), 1709649000},
		{"json number milliseconds", json.Number("1709649000000"), 1709649000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeTimestamp(tt.value)
			if got.Seconds == nil {
				t.Fatalf("decodeTimestamp(%v) = %+v, want seconds", tt.value, got)
			}
			if *got.Seconds != tt.wantSeconds {
				t.Fatalf("seconds = %v, want %v", *got.Seconds, tt.wantSeconds)
			}
		})
	}

	if got := decodeTimestamp(map[string]any{"nanoseconds": 5}); !got.IsZero() {
		t.Fatalf("object without seconds = %+v, want absent", got)
	}
	if got := decodeTimestamp(true); got.Text != "true" {
		t.Fatalf("unsupported value = %+v, want text passthrough", got)
	}
	var nilTime *time.Time
	if got := decodeTimestamp(nilTime); !got.IsZero() {
		t.Fatalf("nil pointer = %+v, want absent", got)
	}
}

func TestFindRecord(t *testing.T) {
	records := []models.RawBatchRecord{
		{DocID: "doc-1", ID: "B-1"},
		{DocID: "doc-2", Name: "Evening"},
	}
	for _, key := range []string{"B-1", "doc-1"} {
		if r, ok := findRecord(records, key); !ok || r.DocID != "doc-1" {
			t.Fatalf("findRecord(%q) = %+v, %v", key, r, ok)
		}
	}
	if r, ok := findRecord(records, "Evening"); !ok || r.DocID != "doc-2" {
		t.Fatalf("findRecord by name = %+v, %v", r, ok)
	}
	if _, ok := findRecord(records, ""); ok {
		t.Fatal("empty key must not match")
	}
}
