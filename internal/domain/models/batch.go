package models

import "time"

// RawTimestamp carries one of the timestamp shapes a batch document may hold.
// At most one field is expected to be set; the zero value means the field was absent.
type RawTimestamp struct {
	Native  *time.Time
	Seconds *float64
	Text    string
}

// IsZero reports whether no timestamp shape was provided.
func (t RawTimestamp) IsZero() bool {
	return t.Native == nil && t.Seconds == nil && t.Text == ""
}

// RawStats mirrors the `stats` map of a batch document. Values are kept as
// decoded from the store; nil means the key was missing.
type RawStats struct {
	SmallEggs  any
	MediumEggs any
	LargeEggs  any
	CrackEggs  any
	DirtyEggs  any
	GoodEggs   any
	TotalEggs  any
}

// RawBatchRecord is a batch statistics document as stored in the `batches` collection.
type RawBatchRecord struct {
	DocID     string // storage key, always present
	ID        string
	Name      string
	AccountID string
	Status    any
	CreatedAt RawTimestamp
	UpdatedAt RawTimestamp
	Stats     RawStats
}

// BatchID is the resolved, stable identity of a batch.
type BatchID string

// ResolveBatchID picks the first non-empty of id, name and storage key.
func (r RawBatchRecord) ResolveBatchID() BatchID {
	switch {
	case r.ID != "":
		return BatchID(r.ID)
	case r.Name != "":
		return BatchID(r.Name)
	default:
		return BatchID(r.DocID)
	}
}

// MatchesKey reports whether key refers to this record by id, name or storage key.
func (r RawBatchRecord) MatchesKey(key string) bool {
	return key != "" && (r.ID == key || r.Name == key || r.DocID == key)
}

// Status is the two-valued batch status.
type Status string

const (
	StatusActive    Status = "active"
	StatusNotActive Status = "not active"
)

// Label returns the title-cased status used in exports and digests.
func (s Status) Label() string {
	if s == StatusActive {
		return "Active"
	}
	return "Not Active"
}

// Size labels used in size breakdowns and size filters.
const (
	SizeSmall   = "Small"
	SizeMedium  = "Medium"
	SizeLarge   = "Large"
	SizeDefect  = "Defect"
	SizeUnknown = "Unknown"
)

// SizeBreakdown counts eggs per size category plus defects.
type SizeBreakdown struct {
	Small  int `json:"Small" bson:"small"`
	Medium int `json:"Medium" bson:"medium"`
	Large  int `json:"Large" bson:"large"`
	Defect int `json:"Defect" bson:"defect"`
}

// Count returns the count for a size label, 0 for unknown labels.
func (b SizeBreakdown) Count(label string) int {
	switch label {
	case SizeSmall:
		return b.Small
	case SizeMedium:
		return b.Medium
	case SizeLarge:
		return b.Large
	case SizeDefect:
		return b.Defect
	default:
		return 0
	}
}

// BatchSummary is the normalized, display-ready view of one batch.
type BatchSummary struct {
	BatchNumber   BatchID       `json:"batchNumber"`
	TotalEggs     int           `json:"totalEggs"`
	GoodEggs      int           `json:"goodEggs"`
	DefectEggs    int           `json:"defectEggs"`
	SizeBreakdown SizeBreakdown `json:"sizeBreakdown"`
	CommonSize    string        `json:"commonSize"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	TimeRange     string        `json:"timeRange"`
	FromDate      string        `json:"fromDate"`
	ToDate        string        `json:"toDate"`
}

// DefectRate returns defect eggs as a percentage of total eggs, 0 when the batch is empty.
func (s BatchSummary) DefectRate() float64 {
	if s.TotalEggs == 0 {
		return 0
	}
	return float64(s.DefectEggs) / float64(s.TotalEggs) * 100
}
