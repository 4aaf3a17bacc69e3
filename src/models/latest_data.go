package models

// MLatestData is the payload pushed to websocket clients. Type is "INITIAL"
// on connect and "UPDATE" afterwards.
type MLatestData struct {
	Type      string   `json:"type"`
	Online    bool     `json:"online"`
	Alerts    []MAlert `json:"alerts"`
	Timestamp int64    `json:"timestamp"`
}
