package models

import "time"

// MAlert is a delivered price-change notification.
type MAlert struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
