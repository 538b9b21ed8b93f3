package models

import "time"

// SystemMetrics is a JSON friendly summary of process metrics.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	NoteSaves                uint64    `json:"note_saves"`
	NoteSaveFailures         uint64    `json:"note_save_failures"`
	DatasetRecords           int64     `json:"dataset_records"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
