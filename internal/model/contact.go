package model

import "time"

// Category classifies an emergency contact.
type Category string

const (
	CategoryNationalEmergency Category = "national_emergency"
	CategoryCrisisHotline     Category = "crisis_hotline"
)

// Origin records where a returned ContactSet came from.
type Origin string

const (
	OriginFresh   Origin = "fresh"   // successful live fetch
	OriginCached  Origin = "cached"  // prior cached value (possibly stale)
	OriginDefault Origin = "default" // hardcoded safety fallback
)

// ContactCount is the fixed size of every ContactSet: one national emergency
// number plus four mental-health crisis hotlines.
const ContactCount = 5

// ContactRecord is a single emergency or crisis contact.
type ContactRecord struct {
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	SourceURL   string   `json:"source_url"`
	Country     string   `json:"country"`
}

// ContactSet is the fixed-shape result of a pipeline run.
type ContactSet struct {
	Country   string          `json:"country"`
	Contacts  []ContactRecord `json:"contacts"`
	FetchedAt time.Time       `json:"fetched_at"`
	Origin    Origin          `json:"origin"`
}

// NationalCount returns how many contacts are classified NationalEmergency.
func (s *ContactSet) NationalCount() int {
	n := 0
	for _, c := range s.Contacts {
		if c.Category == CategoryNationalEmergency {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can tag origin without mutating
// cached state.
func (s *ContactSet) Clone() *ContactSet {
	out := *s
	out.Contacts = make([]ContactRecord, len(s.Contacts))
	copy(out.Contacts, s.Contacts)
	return &out
}

// Snippet is a single unit of search evidence: a result title, its text, and
// the URL it came from. The extraction stage treats a slice of snippets as an
// unordered evidence bag.
type Snippet struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}
