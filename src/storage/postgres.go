package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.IDatabase = (*PostgresDB)(nil)

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, fmt.Errorf("postgres requires a connection string")
	}

	return &PostgresDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS cryptocurrencies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL,
			image TEXT,
			current_price DOUBLE PRECISION NOT NULL,
			market_cap DOUBLE PRECISION,
			total_volume DOUBLE PRECISION,
			price_change_percentage_24h DOUBLE PRECISION,
			high_24h DOUBLE PRECISION,
			low_24h DOUBLE PRECISION,
			circulating_supply DOUBLE PRECISION,
			max_supply DOUBLE PRECISION,
			fetched_at BIGINT NOT NULL
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

func (d *PostgresDB) UpsertCryptocurrencies(records []models.MCryptocurrency) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			image = EXCLUDED.image,
			current_price = EXCLUDED.current_price,
			market_cap = EXCLUDED.market_cap,
			total_volume = EXCLUDED.total_volume,
			price_change_percentage_24h = EXCLUDED.price_change_percentage_24h,
			high_24h = EXCLUDED.high_24h,
			low_24h = EXCLUDED.low_24h,
			circulating_supply = EXCLUDED.circulating_supply,
			max_supply = EXCLUDED.max_supply,
			fetched_at = EXCLUDED.fetched_at
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

func (d *PostgresDB) FetchAll() ([]models.MCryptocurrency, error) {
	rows, err := d.DB.Query("SELECT " + selectColumns + " FROM cryptocurrencies ORDER BY market_cap DESC NULLS LAST")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCryptocurrencies(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) FetchByIDs(ids []string) ([]models.MCryptocurrency, error) {
	if len(ids) == 0 {
		return []models.MCryptocurrency{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := "SELECT " + selectColumns + " FROM cryptocurrencies WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCryptocurrencies(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveFavorites(ids []string) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO favorites (id) VALUES ($1)")
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

func (d *PostgresDB) LoadFavorites() ([]string, error) {
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

func (d *PostgresDB) CleanupStale(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan).Unix()

	res, err := d.DB.Exec("DELETE FROM cryptocurrencies WHERE fetched_at < $1", cutoff)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleanup removed %d stale records", n)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
