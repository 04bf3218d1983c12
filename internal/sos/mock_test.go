package sos

import (
	"context"
	"sync"
	"time"

	"github.com/stressease/crisisline/internal/model"
	"github.com/stressease/crisisline/internal/store"
)

// mockStore is an in-memory Store with call counters and injectable errors.
type mockStore struct {
	mu      sync.Mutex
	entries map[string]store.Entry

	getErr error
	putErr error

	getCalls int
	putCalls int
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string]store.Entry)}
}

func (m *mockStore) GetContacts(ctx context.Context, countryKey string) (*store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[countryKey]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockStore) PutContacts(ctx context.Context, countryKey string, set model.ContactSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[countryKey] = store.Entry{
		Country:   countryKey,
		Set:       set,
		FetchedAt: set.FetchedAt,
	}
	return nil
}

func (m *mockStore) ListCountries(ctx context.Context) ([]store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) Migrate(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                      { return nil }

func (m *mockStore) seed(key string, set model.ContactSet, fetchedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set.FetchedAt = fetchedAt
	m.entries[key] = store.Entry{Country: key, Set: set, FetchedAt: fetchedAt}
}

// mockSearch is a SearchStage returning canned snippets or an error.
type mockSearch struct {
	mu       sync.Mutex
	snippets []model.Snippet
	err      error
	calls    int
	delay    time.Duration
}

func (m *mockSearch) Search(ctx context.Context, country string, year int) ([]model.Snippet, error) {
	m.mu.Lock()
	m.calls++
	delay := m.delay
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.snippets, nil
}

func (m *mockSearch) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockExtract is an ExtractStage returning a canned candidate or an error.
type mockExtract struct {
	mu    sync.Mutex
	set   *model.ContactSet
	err   error
	calls int
}

func (m *mockExtract) Extract(ctx context.Context, country string, year int, snippets []model.Snippet) (*model.ContactSet, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.set.Clone(), nil
}

func (m *mockExtract) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// validSet builds a well-formed 5-contact candidate with trusted sources.
func validSet(country string) *model.ContactSet {
	contacts := []model.ContactRecord{
		{
			Name:        "National Emergency Number",
			PhoneNumber: "112",
			Category:    model.CategoryNationalEmergency,
			SourceURL:   "https://www.interior.gov/emergency",
			Country:     country,
		},
	}
	hotlines := []struct{ name, phone, url string }{
		{"Crisis Line A", "0800 111 111", "https://health.gov/crisis"},
		{"Crisis Line B", "0800 222 222", "https://mentalhealth.org/help"},
		{"Crisis Line C", "0800 333 333", "https://suicideprevention.org/"},
		{"Crisis Line D", "0800 444 444", "https://www.who.int/hotlines"},
	}
	for _, h := range hotlines {
		contacts = append(contacts, model.ContactRecord{
			Name:        h.name,
			PhoneNumber: h.phone,
			Category:    model.CategoryCrisisHotline,
			SourceURL:   h.url,
			Country:     country,
		})
	}
	return &model.ContactSet{Country: country, Contacts: contacts}
}

// testSnippets is a minimal evidence bag for the happy path.
var testSnippets = []model.Snippet{
	{Title: "Emergency numbers", Text: "Dial 112 in an emergency.", SourceURL: "https://www.interior.gov/emergency"},
	{Title: "Crisis hotlines", Text: "Call 0800 111 111 for crisis support.", SourceURL: "https://health.gov/crisis"},
}
