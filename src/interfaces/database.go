package interfaces

import (
	"time"

	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the local store.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// UpsertCryptocurrencies writes a batch of records keyed by id. Each
	// upsert is per-id atomic; a later write of the same id supersedes the
	// whole record.
	UpsertCryptocurrencies(records []models.MCryptocurrency) error

	// -----------------------------------------------------------------------------

	// FetchAll returns every stored record.
	FetchAll() ([]models.MCryptocurrency, error)

	// -----------------------------------------------------------------------------

	// FetchByIDs returns the stored records matching the given ids. Ids with
	// no stored record are simply absent from the result.
	FetchByIDs(ids []string) ([]models.MCryptocurrency, error)

	// -----------------------------------------------------------------------------

	// SaveFavorites replaces the persisted favorite id set.
	SaveFavorites(ids []string) error

	// LoadFavorites returns the persisted favorite id set.
	LoadFavorites() ([]string, error)

	// -----------------------------------------------------------------------------

	// CleanupStale removes records whose last fetch is older than the cutoff.
	CleanupStale(olderThan time.Duration) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
