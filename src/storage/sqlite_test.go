package storage

import (
	"path/filepath"
	"testing"
	"time"

	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func openTestDB(t *testing.T) *AsyncSQLiteDB {
	t.Helper()

	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	db, err := NewAsyncSQLiteDB(cfg, logger.NewLogger(cfg, "test"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	return db
}

// -----------------------------------------------------------------------------

func ptr(v float64) *float64 { return &v }

func sampleRecord(id string, price float64, marketCap *float64) models.MCryptocurrency {
	return models.MCryptocurrency{
		ID:           id,
		Name:         "Coin " + id,
		Symbol:       id[:3],
		CurrentPrice: price,
		MarketCap:    marketCap,
		FetchedAt:    time.Now().UTC(),
	}
}

// -----------------------------------------------------------------------------

func TestUpsertAndFetchAll(t *testing.T) {
	db := openTestDB(t)

	records := []models.MCryptocurrency{
		sampleRecord("bitcoin", 50000, ptr(1e12)),
		sampleRecord("ethereum", 3000, ptr(4e11)),
	}
	require.NoError(t, db.UpsertCryptocurrencies(records))

	got, err := db.FetchAll()
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by market cap descending
	assert.Equal(t, "bitcoin", got[0].ID)
	assert.Equal(t, "ethereum", got[1].ID)
	assert.Equal(t, 50000.0, got[0].CurrentPrice)
	require.NotNil(t, got[0].MarketCap)
	assert.Equal(t, 1e12, *got[0].MarketCap)
}

// -----------------------------------------------------------------------------

func TestUpsertOverwritesById(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{
		sampleRecord("bitcoin", 50000, ptr(1e12)),
	}))
	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{
		sampleRecord("bitcoin", 51000, nil),
	}))

	got, err := db.FetchAll()
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The later write supersedes the whole record, nil included
	assert.Equal(t, 51000.0, got[0].CurrentPrice)
	assert.Nil(t, got[0].MarketCap)
}

// -----------------------------------------------------------------------------

func TestNullOptionalsSurviveRoundTrip(t *testing.T) {
	db := openTestDB(t)

	rec := sampleRecord("newcoin", 1.5, nil)
	rec.MaxSupply = nil
	rec.High24h = ptr(2.0)
	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{rec}))

	got, err := db.FetchByIDs([]string{"newcoin"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// nil stays nil, it must never come back as 0
	assert.Nil(t, got[0].MarketCap)
	assert.Nil(t, got[0].MaxSupply)
	require.NotNil(t, got[0].High24h)
	assert.Equal(t, 2.0, *got[0].High24h)
}

// -----------------------------------------------------------------------------

func TestFetchByIDsSkipsUnknown(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{
		sampleRecord("bitcoin", 50000, nil),
	}))

	got, err := db.FetchByIDs([]string{"bitcoin", "ghostcoin"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bitcoin", got[0].ID)

	empty, err := db.FetchByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// -----------------------------------------------------------------------------

func TestUpsertEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.UpsertCryptocurrencies(nil))
}

// -----------------------------------------------------------------------------

func TestFavoritesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveFavorites([]string{"bitcoin", "ethereum"}))

	ids, err := db.LoadFavorites()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bitcoin", "ethereum"}, ids)

	// Save replaces, not merges
	require.NoError(t, db.SaveFavorites([]string{"solana"}))
	ids, err = db.LoadFavorites()
	require.NoError(t, err)
	assert.Equal(t, []string{"solana"}, ids)

	require.NoError(t, db.SaveFavorites(nil))
	ids, err = db.LoadFavorites()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// -----------------------------------------------------------------------------

func TestCleanupStale(t *testing.T) {
	db := openTestDB(t)

	fresh := sampleRecord("bitcoin", 50000, nil)
	stale := sampleRecord("oldcoin", 1, nil)
	stale.FetchedAt = time.Now().UTC().Add(-48 * time.Hour)

	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{fresh, stale}))
	require.NoError(t, db.CleanupStale(24*time.Hour))

	got, err := db.FetchAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bitcoin", got[0].ID)
}

// -----------------------------------------------------------------------------

func TestDataSurvivesReopen(t *testing.T) {
	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "persist.db"),
		},
	}
	log := logger.NewLogger(cfg, "test")

	db, err := NewAsyncSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	require.NoError(t, db.UpsertCryptocurrencies([]models.MCryptocurrency{
		sampleRecord("bitcoin", 50000, nil),
	}))
	require.NoError(t, db.Close())

	reopened, err := NewAsyncSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, reopened.Initialize())
	defer reopened.Close()

	got, err := reopened.FetchAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bitcoin", got[0].ID)
}
