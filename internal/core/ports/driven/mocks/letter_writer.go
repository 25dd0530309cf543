package mocks

import (
	"context"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// MockLetterWriter is a mock implementation of LetterWriter for testing
type MockLetterWriter struct {
	// Letter is returned from Write when Err is nil
	Letter *domain.Letter

	// Err is returned from Write when set
	Err error

	// Requests records the prompts passed to Write
	Requests []*domain.LetterRequest
}

// NewMockLetterWriter creates a new MockLetterWriter
func NewMockLetterWriter() *MockLetterWriter {
	return &MockLetterWriter{
		Letter: &domain.Letter{
			Salutation: "Dear Hiring Manager",
			Body:       "I am writing to apply.",
			Signature:  "Sincerely yours",
		},
	}
}

func (m *MockLetterWriter) Write(ctx context.Context, req *domain.LetterRequest) (*domain.Letter, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Letter, nil
}

// MockListingFetcher is a mock implementation of ListingFetcher for testing
type MockListingFetcher struct {
	// Listing is returned from Fetch when Err is nil
	Listing *domain.Listing

	// Err is returned from Fetch when set
	Err error
}

// NewMockListingFetcher creates a new MockListingFetcher
func NewMockListingFetcher() *MockListingFetcher {
	return &MockListingFetcher{
		Listing: &domain.Listing{
			Title:       "Backend Engineer",
			Company:     "Acme",
			Location:    "Remote",
			Description: "Build and operate backend services.",
		},
	}
}

func (m *MockListingFetcher) Fetch(ctx context.Context, url string) (*domain.Listing, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Listing, nil
}
