package models

import "time"

// ChartSeries is the canonical chart shape every market-data provider emits:
// ascending unix-second timestamps with matching close prices and volumes.
// All three slices always have the same length.
type ChartSeries struct {
	Timestamps []int64   `json:"timestamps"`
	Close      []float64 `json:"close"`
	Volume     []float64 `json:"volume"`
}

// IsEmpty reports whether the series carries no price points.
func (s ChartSeries) IsEmpty() bool {
	return len(s.Timestamps) == 0
}

// Len returns the number of price points.
func (s ChartSeries) Len() int {
	return len(s.Timestamps)
}

// CachedChart is the value stored in the chart cache: the normalized series
// plus the metadata needed for the staleness decision.
type CachedChart struct {
	Series    ChartSeries `json:"series"`
	FetchedAt time.Time   `json:"fetched_at"`
	Source    string      `json:"source"` // Provider name or "table" for ingested payloads
}
