// Package store persists the most recent valid ContactSet per country.
package store

import (
	"context"
	"time"

	"github.com/stressease/crisisline/internal/model"
)

// Entry is a cached ContactSet with its write time. Staleness is a read-time
// policy applied by the pipeline; the store itself never ages entries out.
type Entry struct {
	Country   string           `json:"country"`
	Set       model.ContactSet `json:"set"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Store defines the persistence interface for the contact cache.
//
// GetContacts returns (nil, nil) on a cache miss; any error is a store-level
// failure the caller must treat as "cache unavailable", distinct from a miss.
type Store interface {
	GetContacts(ctx context.Context, countryKey string) (*Entry, error)
	PutContacts(ctx context.Context, countryKey string, set model.ContactSet) error
	ListCountries(ctx context.Context) ([]Entry, error)

	Migrate(ctx context.Context) error
	Close() error
}
