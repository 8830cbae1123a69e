package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS weather_journal (
	id                TEXT PRIMARY KEY,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	city              TEXT NOT NULL,
	country           TEXT,
	temperature       DOUBLE PRECISION NOT NULL,
	feels_like        DOUBLE PRECISION,
	humidity          DOUBLE PRECISION,
	wind_speed        DOUBLE PRECISION,
	weather_condition TEXT NOT NULL,
	weather_icon      TEXT,
	note              TEXT,
	mood_tag          TEXT,
	device_id         TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS weather_journal_device_created_idx
	ON weather_journal (device_id, created_at DESC)`,
}

const entryColumns = `id, created_at, city, country, temperature, feels_like,
	humidity, wind_speed, weather_condition, weather_icon, note, mood_tag, device_id`

// PostgresStore keeps journal entries in the weather_journal table.
type PostgresStore struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresStore creates a store backed by the given pool or transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Migrate creates the table and index when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate weather_journal: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, deviceID string, in Input) (*Entry, error) {
	e, err := newEntry(deviceID, in, s.now())
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO weather_journal (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.db.Exec(ctx, query,
		e.ID, e.CreatedAt, e.City, e.Country, e.Temperature, e.FeelsLike,
		e.Humidity, e.WindSpeed, e.WeatherCondition, e.WeatherIcon, e.Note, e.MoodTag, e.DeviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByDevice(ctx context.Context, deviceID string, limit int) ([]*Entry, error) {
	if deviceID == "" {
		return nil, ErrMissingDevice
	}

	query := `SELECT ` + entryColumns + ` FROM weather_journal
		WHERE device_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.db.Query(ctx, query, deviceID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Delete(ctx context.Context, deviceID, id string) error {
	if deviceID == "" {
		return ErrMissingDevice
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM weather_journal WHERE id = $1 AND device_id = $2`, id, deviceID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.CreatedAt,
		&e.City,
		&e.Country,
		&e.Temperature,
		&e.FeelsLike,
		&e.Humidity,
		&e.WindSpeed,
		&e.WeatherCondition,
		&e.WeatherIcon,
		&e.Note,
		&e.MoodTag,
		&e.DeviceID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
