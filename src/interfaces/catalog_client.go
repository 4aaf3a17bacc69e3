package interfaces

import (
	"context"

	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------
// ICatalogClient is the contract for fetching asset data from the remote
// catalog API.
// -----------------------------------------------------------------------------

type ICatalogClient interface {

	// FetchPage retrieves one page of the catalog sorted by the given option.
	FetchPage(ctx context.Context, page int, sortBy models.MSortOption) ([]models.MCryptocurrency, error)

	// -----------------------------------------------------------------------------

	// FetchByIDs retrieves current records for the given ids in a single
	// batched call. An empty id list returns an empty result without a request.
	FetchByIDs(ctx context.Context, ids []string) ([]models.MCryptocurrency, error)

	// -----------------------------------------------------------------------------

	// Search looks up assets matching the query (id or name).
	Search(ctx context.Context, query string) ([]models.MCryptocurrency, error)

	// -----------------------------------------------------------------------------

	// FetchPriceHistory retrieves the historical price series for one asset
	// over the given number of days ("1", "7", "30").
	FetchPriceHistory(ctx context.Context, coinID string, days string) ([]models.MPricePoint, error)
}
