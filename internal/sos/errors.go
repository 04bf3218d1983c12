package sos

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Stage failure sentinels. Every stage failure is caught by the pipeline and
// converted into a fallback decision; none of these ever reach the caller of
// GetContacts.
var (
	// ErrCacheUnavailable marks a store-level failure, distinct from a cache
	// miss. The pipeline treats it as soft and proceeds to a fresh fetch.
	ErrCacheUnavailable = eris.New("cache unavailable")

	// ErrSearchFailed means all search queries were empty or unreachable.
	ErrSearchFailed = eris.New("search failed")

	// ErrExtractionFailed means the model produced unparsable output.
	ErrExtractionFailed = eris.New("extraction failed")
)

// ValidationReason identifies which structural check a candidate set failed.
type ValidationReason string

const (
	ReasonCountMismatch    ValidationReason = "count_mismatch"
	ReasonCategoryMismatch ValidationReason = "category_mismatch"
	ReasonMissingField     ValidationReason = "missing_field"
	ReasonUntrustedSource  ValidationReason = "untrusted_source"
)

// ValidationError reports a rejected candidate ContactSet. A set failing any
// check is wholly rejected; there is no partial acceptance.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Detail)
}

// IsValidationError extracts a *ValidationError from an error chain.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if eris.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
