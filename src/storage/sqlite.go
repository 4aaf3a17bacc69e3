package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.IDatabase = (*AsyncSQLiteDB)(nil)

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables keeps existing rows: the whole point of the store is surviving
// restarts so cached data can be served while offline.
func (d *AsyncSQLiteDB) createTables() error {
	// Optional market fields are NULLable so "unknown" is never stored as 0.
	query := `
		CREATE TABLE IF NOT EXISTS cryptocurrencies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL,
			image TEXT,
			current_price REAL NOT NULL,
			market_cap REAL,
			total_volume REAL,
			price_change_percentage_24h REAL,
			high_24h REAL,
			low_24h REAL,
			circulating_supply REAL,
			max_supply REAL,
			fetched_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create cryptocurrencies: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create favorites: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) UpsertCryptocurrencies(records []models.MCryptocurrency) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cryptocurrencies (
			id, name, symbol, image, current_price, market_cap, total_volume,
			price_change_percentage_24h, high_24h, low_24h, circulating_supply,
			max_supply, fetched_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			symbol = excluded.symbol,
			image = excluded.image,
			current_price = excluded.current_price,
			market_cap = excluded.market_cap,
			total_volume = excluded.total_volume,
			price_change_percentage_24h = excluded.price_change_percentage_24h,
			high_24h = excluded.high_24h,
			low_24h = excluded.low_24h,
			circulating_supply = excluded.circulating_supply,
			max_supply = excluded.max_supply,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.ID, r.Name, r.Symbol, r.Image, r.CurrentPrice, r.MarketCap,
			r.TotalVolume, r.PriceChangePercentage24h, r.High24h, r.Low24h,
			r.CirculatingSupply, r.MaxSupply, r.FetchedAt.Unix(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

const selectColumns = `
	id, name, symbol, image, current_price, market_cap, total_volume,
	price_change_percentage_24h, high_24h, low_24h, circulating_supply,
	max_supply, fetched_at
`

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) FetchAll() ([]models.MCryptocurrency, error) {
	rows, err := d.DB.Query("SELECT " + selectColumns + " FROM cryptocurrencies ORDER BY market_cap DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCryptocurrencies(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) FetchByIDs(ids []string) ([]models.MCryptocurrency, error) {
	if len(ids) == 0 {
		return []models.MCryptocurrency{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := "SELECT " + selectColumns + " FROM cryptocurrencies WHERE id IN (" + placeholders + ")"
	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCryptocurrencies(rows)
}

// -----------------------------------------------------------------------------

func scanCryptocurrencies(rows *sql.Rows) ([]models.MCryptocurrency, error) {
	var records []models.MCryptocurrency

	for rows.Next() {
		var r models.MCryptocurrency
		var fetchedAt int64

		err := rows.Scan(
			&r.ID, &r.Name, &r.Symbol, &r.Image, &r.CurrentPrice, &r.MarketCap,
			&r.TotalVolume, &r.PriceChangePercentage24h, &r.High24h, &r.Low24h,
			&r.CirculatingSupply, &r.MaxSupply, &fetchedAt,
		)
		if err != nil {
			return nil, err
		}

		r.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		records = append(records, r)
	}

	return records, rows.Err()
}

// -----------------------------------------------------------------------------

// SaveFavorites replaces the whole favorite set in one transaction.
func (d *AsyncSQLiteDB) SaveFavorites(ids []string) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO favorites (id) VALUES (?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LoadFavorites() ([]string, error) {
	rows, err := d.DB.Query("SELECT id FROM favorites")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupStale(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan).Unix()

	res, err := d.DB.Exec("DELETE FROM cryptocurrencies WHERE fetched_at < ?", cutoff)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleanup removed %d stale records", n)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
