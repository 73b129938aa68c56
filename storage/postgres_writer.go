package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter handles storing cleaned listings in PostgreSQL
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens the DB and pings it, retrying with backoff
func NewPostgresWriter(connStr string, retries int, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := utils.RetryWithBackoff(retries, time.Second, db.Ping, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return NewPostgresWriterFromDB(db, logger), nil
}

// NewPostgresWriterFromDB wraps an already opened database handle
func NewPostgresWriterFromDB(db *sql.DB, logger *utils.Logger) *PostgresWriter {
	return &PostgresWriter{db: db, logger: logger}
}

// CreateTable creates the listings_clean table if it doesn't exist, with indexes
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings_clean (
		id                           SERIAL PRIMARY KEY,
		listing_id                   TEXT,
		neighbourhood                TEXT NOT NULL DEFAULT '',
		neighbourhood_cleansed       TEXT NOT NULL DEFAULT '',
		neighbourhood_group_cleansed TEXT NOT NULL DEFAULT '',
		property_type                TEXT NOT NULL DEFAULT '',
		room_type                    TEXT NOT NULL DEFAULT '',
		host_response_rate           SMALLINT,
		host_acceptance_rate         SMALLINT,
		host_is_superhost            SMALLINT NOT NULL,
		host_has_profile_pic         SMALLINT NOT NULL,
		host_identity_verified       SMALLINT NOT NULL,
		is_licensed                  SMALLINT NOT NULL,
		latitude                     DOUBLE PRECISION,
		longitude                    DOUBLE PRECISION,
		accommodates                 DOUBLE PRECISION,
		bathrooms                    DOUBLE PRECISION,
		bedrooms                     DOUBLE PRECISION,
		beds                         DOUBLE PRECISION,
		minimum_nights               DOUBLE PRECISION,
		maximum_nights               DOUBLE PRECISION,
		amenities_text               TEXT NOT NULL DEFAULT '',
		price                        NUMERIC(12,2) NOT NULL,
		loaded_at                    TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_clean_price         ON listings_clean (price);
	CREATE INDEX IF NOT EXISTS idx_listings_clean_neighbourhood ON listings_clean (neighbourhood_cleansed);
	CREATE INDEX IF NOT EXISTS idx_listings_clean_room_type     ON listings_clean (room_type);
	`
	_, err := w.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.logger.Info("Table 'listings_clean' is ready")
	return nil
}

// SaveClean inserts cleaned listings in a single transaction
func (w *PostgresWriter) SaveClean(listings []*models.Listing) (err error) {
	if len(listings) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO listings_clean (
			listing_id, neighbourhood, neighbourhood_cleansed, neighbourhood_group_cleansed,
			property_type, room_type, host_response_rate, host_acceptance_rate,
			host_is_superhost, host_has_profile_pic, host_identity_verified, is_licensed,
			latitude, longitude, accommodates, bathrooms, bedrooms, beds,
			minimum_nights, maximum_nights, amenities_text, price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err = stmt.Exec(
			nullString(l.ID),
			l.Neighbourhood,
			l.NeighbourhoodCleansed,
			l.NeighbourhoodGroupCleansed,
			l.PropertyType,
			l.RoomType,
			nullInt(l.HostResponseRate),
			nullInt(l.HostAcceptanceRate),
			l.HostIsSuperhost,
			l.HostHasProfilePic,
			l.HostIdentityVerified,
			l.IsLicensed,
			nullFloat(l.Latitude),
			nullFloat(l.Longitude),
			nullFloat(l.Accommodates),
			nullFloat(l.Bathrooms),
			nullFloat(l.Bedrooms),
			nullFloat(l.Beds),
			nullFloat(l.MinimumNights),
			nullFloat(l.MaximumNights),
			l.AmenitiesText,
			l.Price,
		); err != nil {
			return fmt.Errorf("failed to insert listing %q: %w", l.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Inserted %d listings into PostgreSQL", len(listings))
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
