package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-tracker/src/helpers"
	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------

// CoinGeckoClient fetches asset records and historical price series from the
// CoinGecko REST API through the retrying network manager.
type CoinGeckoClient struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

var _ interfaces.ICatalogClient = (*CoinGeckoClient)(nil)

// -----------------------------------------------------------------------------

func NewCoinGeckoClient(cfg *models.MConfig, netMgr interfaces.INetworkManager) *CoinGeckoClient {
	return &CoinGeckoClient{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg, "CoinGeckoClient"),
	}
}

// -----------------------------------------------------------------------------

// FetchPage retrieves one catalog page sorted by the given option.
func (c *CoinGeckoClient) FetchPage(ctx context.Context, page int, sortBy models.MSortOption) ([]models.MCryptocurrency, error) {
	if page < 1 {
		return nil, helpers.Wrap(fmt.Sprintf("page %d", page), helpers.ErrInvalidInput)
	}
	if !sortBy.Valid() {
		sortBy = models.SortMarketCap
	}

	params := map[string]string{
		"vs_currency": c.Config.Catalog.Currency,
		"order":       string(sortBy),
		"per_page":    strconv.Itoa(c.Config.Catalog.PerPage),
		"page":        strconv.Itoa(page),
	}

	return c.fetchMarkets(ctx, params)
}

// -----------------------------------------------------------------------------

// FetchByIDs retrieves current records for exactly the given ids in a single
// batched call.
func (c *CoinGeckoClient) FetchByIDs(ctx context.Context, ids []string) ([]models.MCryptocurrency, error) {
	if len(ids) == 0 {
		return []models.MCryptocurrency{}, nil
	}

	params := map[string]string{
		"vs_currency": c.Config.Catalog.Currency,
		"ids":         strings.Join(ids, ","),
	}

	return c.fetchMarkets(ctx, params)
}

// -----------------------------------------------------------------------------

// Search looks up assets by id or name.
func (c *CoinGeckoClient) Search(ctx context.Context, query string) ([]models.MCryptocurrency, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, helpers.Wrap("empty search query", helpers.ErrInvalidInput)
	}

	params := map[string]string{
		"vs_currency": c.Config.Catalog.Currency,
		"ids":         trimmed,
	}

	results, err := c.fetchMarkets(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, helpers.Wrap("no coin matched "+trimmed, helpers.ErrNotFound)
	}

	return results, nil
}

// -----------------------------------------------------------------------------

func (c *CoinGeckoClient) fetchMarkets(ctx context.Context, params map[string]string) ([]models.MCryptocurrency, error) {
	body, err := c.Network.Get(ctx, c.Config.Catalog.BaseURL+"/coins/markets", params)
	if err != nil {
		return nil, err
	}

	var records []models.MCryptocurrency
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, helpers.Wrap("markets payload", helpers.ErrDecode)
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].FetchedAt = now
	}

	return records, nil
}

// -----------------------------------------------------------------------------
// Price History
// -----------------------------------------------------------------------------

type marketChartResponse struct {
	Prices [][]*float64 `json:"prices"`
}

// -----------------------------------------------------------------------------

// FetchPriceHistory retrieves the historical price series for one asset.
func (c *CoinGeckoClient) FetchPriceHistory(ctx context.Context, coinID string, days string) ([]models.MPricePoint, error) {
	if strings.TrimSpace(coinID) == "" || strings.TrimSpace(days) == "" {
		return nil, helpers.Wrap("coin id and days are required", helpers.ErrInvalidInput)
	}

	params := map[string]string{
		"vs_currency": c.Config.Catalog.Currency,
		"days":        days,
	}

	body, err := c.Network.Get(ctx, c.Config.Catalog.BaseURL+"/coins/"+coinID+"/market_chart", params)
	if err != nil {
		return nil, err
	}

	return c.parsePriceHistory(coinID, body)
}

// -----------------------------------------------------------------------------

// parsePriceHistory converts the raw [[ms_timestamp, price], ...] series into
// chart points. Entries with missing pair members, non-finite or non-positive
// prices are dropped; the result is sorted ascending by timestamp.
func (c *CoinGeckoClient) parsePriceHistory(coinID string, data []byte) ([]models.MPricePoint, error) {
	var resp marketChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.Wrap("market chart payload", helpers.ErrDecode)
	}

	points := make([]models.MPricePoint, 0, len(resp.Prices))
	dropped := 0

	for i, entry := range resp.Prices {
		if len(entry) < 2 || entry[0] == nil || entry[1] == nil {
			dropped++
			continue
		}

		price := *entry[1]
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			dropped++
			continue
		}

		ts := time.UnixMilli(int64(*entry[0])).UTC()
		points = append(points, models.MPricePoint{
			Index:     i,
			Price:     price,
			Timestamp: &ts,
		})
	}

	if dropped > 0 {
		c.Logger.Debug("Dropped %d invalid history points for %s", dropped, coinID)
	}

	if len(points) == 0 {
		return nil, helpers.Wrap("history for "+coinID, helpers.ErrNoData)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(*points[j].Timestamp)
	})

	return points, nil
}
