package models

// MSortOption mirrors the catalog API's "order" query values.
type MSortOption string

const (
	SortMarketCap   MSortOption = "market_cap_desc"
	SortPriceDesc   MSortOption = "price_desc"
	SortPriceAsc    MSortOption = "price_asc"
	SortVolume      MSortOption = "volume_desc"
	SortPriceChange MSortOption = "price_change_24h_desc"
)

// -----------------------------------------------------------------------------

func (s MSortOption) Valid() bool {
	switch s {
	case SortMarketCap, SortPriceDesc, SortPriceAsc, SortVolume, SortPriceChange:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

func (s MSortOption) DisplayName() string {
	switch s {
	case SortMarketCap:
		return "Market Cap"
	case SortPriceDesc:
		return "Price ↓"
	case SortPriceAsc:
		return "Price ↑"
	case SortVolume:
		return "Volume"
	case SortPriceChange:
		return "24h Change"
	}
	return string(s)
}
