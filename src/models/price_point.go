package models

import "time"

// MPricePoint is a single point of a historical price series. Points are
// produced by chart-response parsing only and are never persisted. Index is
// the position of the point in the raw series, kept for chart ordering even
// after invalid neighbours have been dropped.
type MPricePoint struct {
	Index     int        `json:"index"`
	Price     float64    `json:"price"`
	Timestamp *time.Time `json:"timestamp"`
}
