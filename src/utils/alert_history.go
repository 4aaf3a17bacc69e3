package utils

import (
	"sync"

	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------
// AlertHistory is a fixed-size circular buffer of delivered alerts.
// True ring buffer - no resizing on append!
// -----------------------------------------------------------------------------

type AlertHistory struct {
	mu       sync.RWMutex
	data     []models.MAlert
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewAlertHistory creates a new buffer with fixed capacity
func NewAlertHistory(capacity int) *AlertHistory {
	if capacity <= 0 {
		capacity = 100 // Default reasonable size
	}

	return &AlertHistory{
		data:     make([]models.MAlert, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds an alert, overwriting the oldest entry when full
func (h *AlertHistory) Append(alert models.MAlert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.index] = alert
	h.index = (h.index + 1) % h.capacity

	if h.size < h.capacity {
		h.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns up to n most recent alerts, oldest first
func (h *AlertHistory) Latest(n int) []models.MAlert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 || n <= 0 {
		return []models.MAlert{}
	}

	count := n
	if count > h.size {
		count = h.size
	}

	result := make([]models.MAlert, count)
	startIdx := (h.index - count + h.capacity) % h.capacity

	for i := 0; i < count; i++ {
		result[i] = h.data[(startIdx+i)%h.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// All returns every buffered alert in insertion order (oldest to newest)
func (h *AlertHistory) All() []models.MAlert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return []models.MAlert{}
	}

	result := make([]models.MAlert, h.size)

	var startIdx int
	if h.size == h.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = h.index
	}

	for i := 0; i < h.size; i++ {
		result[i] = h.data[(startIdx+i)%h.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (h *AlertHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (h *AlertHistory) Capacity() int {
	return h.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (h *AlertHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = 0
	h.size = 0
}
