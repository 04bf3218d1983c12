package sos

import (
	"fmt"

	"github.com/stressease/crisisline/internal/model"
)

// Validate applies the structural and provenance rules to a candidate set.
// Checks run in a fixed order and the first violation short-circuits with a
// typed ValidationError; a failing set is rejected whole.
//
// The allow-list check applies only to fresh-origin sets: cached and default
// records are grandfathered.
func Validate(set *model.ContactSet, trusted func(sourceURL string) bool) error {
	if set == nil {
		return &ValidationError{Reason: ReasonCountMismatch, Detail: "nil contact set"}
	}

	if len(set.Contacts) != model.ContactCount {
		return &ValidationError{
			Reason: ReasonCountMismatch,
			Detail: fmt.Sprintf("expected %d contacts, got %d", model.ContactCount, len(set.Contacts)),
		}
	}

	national := 0
	for i, c := range set.Contacts {
		switch c.Category {
		case model.CategoryNationalEmergency:
			national++
		case model.CategoryCrisisHotline:
		default:
			return &ValidationError{
				Reason: ReasonCategoryMismatch,
				Detail: fmt.Sprintf("contact %d has unknown category %q", i+1, c.Category),
			}
		}
	}
	if national != 1 {
		return &ValidationError{
			Reason: ReasonCategoryMismatch,
			Detail: fmt.Sprintf("expected exactly 1 national emergency contact, got %d", national),
		}
	}

	for i, c := range set.Contacts {
		if c.Name == "" {
			return &ValidationError{
				Reason: ReasonMissingField,
				Detail: fmt.Sprintf("contact %d has empty name", i+1),
			}
		}
		if c.PhoneNumber == "" {
			return &ValidationError{
				Reason: ReasonMissingField,
				Detail: fmt.Sprintf("contact %d (%s) has empty phone number", i+1, c.Name),
			}
		}
	}

	if set.Origin == model.OriginFresh {
		for i, c := range set.Contacts {
			if !trusted(c.SourceURL) {
				return &ValidationError{
					Reason: ReasonUntrustedSource,
					Detail: fmt.Sprintf("contact %d (%s) cites untrusted source %q", i+1, c.Name, c.SourceURL),
				}
			}
		}
	}

	return nil
}
