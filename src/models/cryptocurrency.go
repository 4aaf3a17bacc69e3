package models

import "time"

// MCryptocurrency represents one asset's market snapshot as returned by the
// catalog API and as stored locally. Identity is ID; any later fetch of the
// same ID supersedes the whole record.
//
// Optional market fields are pointers so that "unknown" survives a storage
// round-trip as nil instead of being flattened to 0 (a coin can legitimately
// report a zero 24h volume).
type MCryptocurrency struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	Symbol                   string    `json:"symbol"`
	Image                    string    `json:"image"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                *float64  `json:"market_cap"`
	TotalVolume              *float64  `json:"total_volume"`
	PriceChangePercentage24h *float64  `json:"price_change_percentage_24h"`
	High24h                  *float64  `json:"high_24h"`
	Low24h                   *float64  `json:"low_24h"`
	CirculatingSupply        *float64  `json:"circulating_supply"`
	MaxSupply                *float64  `json:"max_supply"`
	FetchedAt                time.Time `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// SameIdentity reports whether two records describe the same asset.
func (c MCryptocurrency) SameIdentity(other MCryptocurrency) bool {
	return c.ID == other.ID
}
