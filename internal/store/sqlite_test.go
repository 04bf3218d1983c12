package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressease/crisisline/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testContactSet(country string, fetchedAt time.Time) model.ContactSet {
	return model.ContactSet{
		Country: country,
		Contacts: []model.ContactRecord{
			{
				Name:        "National Emergency Number",
				PhoneNumber: "112",
				Category:    model.CategoryNationalEmergency,
				SourceURL:   "https://www.interior.gov/",
				Country:     country,
			},
			{
				Name:        "Crisis Line",
				PhoneNumber: "0800 111 111",
				Category:    model.CategoryCrisisHotline,
				SourceURL:   "https://health.gov/crisis",
				Country:     country,
			},
		},
		FetchedAt: fetchedAt,
		Origin:    model.OriginFresh,
	}
}

func TestSQLiteGetMiss(t *testing.T) {
	s := newTestSQLiteStore(t)

	entry, err := s.GetContacts(context.Background(), "germany")
	require.NoError(t, err)
	assert.Nil(t, entry, "a miss is (nil, nil), not an error")
}

func TestSQLitePutGetRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	fetchedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	set := testContactSet("germany", fetchedAt)

	require.NoError(t, s.PutContacts(context.Background(), "germany", set))

	entry, err := s.GetContacts(context.Background(), "germany")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "germany", entry.Country)
	assert.Equal(t, set.Contacts, entry.Set.Contacts)
	assert.Equal(t, model.OriginFresh, entry.Set.Origin)
	assert.WithinDuration(t, fetchedAt, entry.FetchedAt, time.Second)
}

func TestSQLitePutOverwritesExisting(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testContactSet("germany", time.Now().UTC().Add(-48*time.Hour))
	require.NoError(t, s.PutContacts(ctx, "germany", first))

	second := testContactSet("germany", time.Now().UTC())
	second.Contacts[1].PhoneNumber = "0800 999 999"
	require.NoError(t, s.PutContacts(ctx, "germany", second))

	entry, err := s.GetContacts(ctx, "germany")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "0800 999 999", entry.Set.Contacts[1].PhoneNumber)

	entries, err := s.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "upsert must not create a second row")
}

func TestSQLiteEntriesAreIndependentPerCountry(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutContacts(ctx, "germany", testContactSet("germany", time.Now().UTC())))
	require.NoError(t, s.PutContacts(ctx, "france", testContactSet("france", time.Now().UTC())))

	entry, err := s.GetContacts(ctx, "france")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "france", entry.Set.Country)
}

func TestSQLiteListCountries(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	entries, err := s.ListCountries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for _, c := range []string{"japan", "france", "germany"} {
		require.NoError(t, s.PutContacts(ctx, c, testContactSet(c, time.Now().UTC())))
	}

	entries, err = s.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "france", entries[0].Country, "listing is ordered by country")
	assert.Equal(t, "germany", entries[1].Country)
	assert.Equal(t, "japan", entries[2].Country)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
