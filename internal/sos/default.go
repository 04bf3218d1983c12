package sos

import (
	"time"

	"github.com/stressease/crisisline/internal/model"
)

// defaultContacts is the hardcoded safety fallback returned when no live
// fetch succeeds and no cache entry exists. It guarantees the caller always
// receives a full 5-contact set even on a first-ever call with no network.
// These are internationally recognized services, not country-specific ones.
var defaultContacts = []model.ContactRecord{
	{
		Name:        "Universal Emergency Number",
		PhoneNumber: "112",
		Description: "General emergency number reachable in most countries (911 in North America)",
		Category:    model.CategoryNationalEmergency,
		SourceURL:   "https://www.itu.int/",
	},
	{
		Name:        "988 Suicide & Crisis Lifeline",
		PhoneNumber: "988",
		Description: "24/7 suicide and crisis support (United States)",
		Category:    model.CategoryCrisisHotline,
		SourceURL:   "https://988lifeline.org/",
	},
	{
		Name:        "Samaritans",
		PhoneNumber: "116 123",
		Description: "Free 24/7 emotional support (United Kingdom and Ireland)",
		Category:    model.CategoryCrisisHotline,
		SourceURL:   "https://www.samaritans.org/",
	},
	{
		Name:        "Crisis Text Line",
		PhoneNumber: "741741",
		Description: "Text HOME for 24/7 crisis support by text message",
		Category:    model.CategoryCrisisHotline,
		SourceURL:   "https://www.crisistextline.org/",
	},
	{
		Name:        "Befrienders Worldwide",
		PhoneNumber: "116 123",
		Description: "Directory of emotional support helplines worldwide",
		Category:    model.CategoryCrisisHotline,
		SourceURL:   "https://befrienders.org/",
	},
}

// DefaultContacts returns the static fallback set for a country, tagged
// OriginDefault.
func DefaultContacts(country string, now time.Time) *model.ContactSet {
	contacts := make([]model.ContactRecord, len(defaultContacts))
	copy(contacts, defaultContacts)
	for i := range contacts {
		contacts[i].Country = country
	}
	return &model.ContactSet{
		Country:   country,
		Contacts:  contacts,
		FetchedAt: now,
		Origin:    model.OriginDefault,
	}
}

func init() {
	// A malformed default would mean DefaultExhausted, which must be
	// impossible; fail fast at process start instead.
	if err := Validate(DefaultContacts("anywhere", time.Now()), func(string) bool { return true }); err != nil {
		panic("sos: static default contact set is malformed: " + err.Error())
	}
}
