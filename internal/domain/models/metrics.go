package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// FleetMetrics aggregates a collection of batch summaries.
type FleetMetrics struct {
	TotalBatches         int     `json:"totalBatches" bson:"total_batches"`
	TotalEggs            int     `json:"totalEggs" bson:"total_eggs"`
	ActiveBatches        int     `json:"activeBatches" bson:"active_batches"`
	AvgDefectRatePercent float64 `json:"avgDefectRatePercent" bson:"avg_defect_rate_percent"`
	AvgDefectRate        string  `json:"avgDefectRate" bson:"avg_defect_rate"`
}

// TrendPoint is one calendar-day bucket of a trend series.
type TrendPoint struct {
	Date        string  `json:"date" bson:"date"`
	DateLabel   string  `json:"dateLabel" bson:"date_label"`
	Value       float64 `json:"value" bson:"value"`
	SampleCount int     `json:"sampleCount" bson:"sample_count"`
}

// Trends holds the defect-rate and production series with their latest deltas.
type Trends struct {
	DefectTrend      []TrendPoint `json:"defectTrend" bson:"defect_trend"`
	ProductionTrend  []TrendPoint `json:"productionTrend" bson:"production_trend"`
	DefectChange     float64      `json:"defectChange" bson:"defect_change"`
	ProductionChange float64      `json:"productionChange" bson:"production_change"`
}

// Percent is a percentage that may be undefined, e.g. a relative difference against zero.
type Percent struct {
	Value float64
	Valid bool
}

// String renders the value with one decimal, or "N/A" when undefined.
func (p Percent) String() string {
	if !p.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(p.Value, 'f', 1, 64)
}

// MarshalJSON encodes undefined percentages as the string "N/A".
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(p.Value)
}

// ComparisonField describes one metric that differs across compared batches.
type ComparisonField struct {
	Key               string    `json:"key"`
	FieldLabel        string    `json:"fieldLabel"`
	PerBatchValues    []float64 `json:"perBatchValues"`
	MinValue          float64   `json:"minValue"`
	MaxValue          float64   `json:"maxValue"`
	PercentDifference Percent   `json:"percentDifference"`
	BestBatchID       BatchID   `json:"bestBatchId"`
}

// InventoryReport is the scheduled digest snapshot stored in MongoDB.
type InventoryReport struct {
	AccountID   string       `bson:"account_id" json:"accountId"`
	GeneratedAt time.Time    `bson:"generated_at" json:"generatedAt"`
	Metrics     FleetMetrics `bson:"metrics" json:"metrics"`
	Trends      Trends       `bson:"trends" json:"trends"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}
