package driven

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// LetterWriter asks a language model to draft a structured cover letter
// from an assembled prompt.
type LetterWriter interface {
	// Write sends the prompt pair and returns the structured letter.
	Write(ctx context.Context, req *domain.LetterRequest) (*domain.Letter, error)
}

// ListingFetcher retrieves a job-listing page and extracts the fields
// named by the data-driven selector table.
type ListingFetcher interface {
	// Fetch validates that the listing URL is reachable and returns the
	// extracted fields. Returns domain.ErrListingUnreachable when the
	// page cannot be fetched with a successful status.
	Fetch(ctx context.Context, url string) (*domain.Listing, error)
}
