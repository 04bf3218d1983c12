package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/stressease/crisisline/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock implements it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contact_cache (
	id         TEXT PRIMARY KEY,
	country    TEXT NOT NULL UNIQUE,
	contacts   JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contact_cache_fetched_at ON contact_cache(fetched_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetContacts(ctx context.Context, countryKey string) (*Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT country, contacts, fetched_at FROM contact_cache WHERE country = $1`,
		countryKey,
	)

	var e Entry
	var contactsJSON []byte
	err := row.Scan(&e.Country, &contactsJSON, &e.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get contacts %s", countryKey)
	}
	if err := json.Unmarshal(contactsJSON, &e.Set); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal contacts %s", countryKey)
	}
	return &e, nil
}

func (s *PostgresStore) PutContacts(ctx context.Context, countryKey string, set model.ContactSet) error {
	contactsJSON, err := json.Marshal(set)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contacts")
	}

	fetchedAt := set.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO contact_cache (id, country, contacts, fetched_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (country) DO UPDATE SET contacts = EXCLUDED.contacts, fetched_at = EXCLUDED.fetched_at`,
		uuid.New().String(), countryKey, contactsJSON, fetchedAt,
	)
	return eris.Wrapf(err, "postgres: put contacts %s", countryKey)
}

func (s *PostgresStore) ListCountries(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT country, contacts, fetched_at FROM contact_cache ORDER BY country`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list countries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var contactsJSON []byte
		if err := rows.Scan(&e.Country, &contactsJSON, &e.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		if err := json.Unmarshal(contactsJSON, &e.Set); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal contacts %s", e.Country)
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list countries iterate")
}
