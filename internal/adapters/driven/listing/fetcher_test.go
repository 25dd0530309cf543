package listing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

const listingPage = `<!DOCTYPE html>
<html>
<head><title>Careers at Acme</title></head>
<body>
	<header>
		<span class="company-name">Acme Corp</span>
		<div class="location">Amsterdam,
			Netherlands</div>
	</header>
	<h1>Senior   Backend Engineer</h1>
	<div class="job-description">
		<p>We build payment rails in Go.</p>
		<script>trackPageView();</script>
		<p>You will own services end to end.</p>
	</div>
</body>
</html>`

func servePage(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_ExtractsFields(t *testing.T) {
	srv := servePage(t, http.StatusOK, listingPage)
	f := NewFetcher(nil, time.Second)

	listing, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listing.Title != "Senior Backend Engineer" {
		t.Errorf("unexpected title: %q", listing.Title)
	}
	if listing.Company != "Acme Corp" {
		t.Errorf("unexpected company: %q", listing.Company)
	}
	if listing.Location != "Amsterdam, Netherlands" {
		t.Errorf("unexpected location: %q", listing.Location)
	}
	want := "We build payment rails in Go. You will own services end to end."
	if listing.Description != want {
		t.Errorf("unexpected description: %q", listing.Description)
	}
}

func TestFetcher_SelectorFallbackOrder(t *testing.T) {
	page := `<html><head><title>Fallback Title</title></head><body><p>no h1 here</p></body></html>`
	srv := servePage(t, http.StatusOK, page)
	f := NewFetcher(nil, time.Second)

	listing, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Title != "Fallback Title" {
		t.Errorf("expected title element fallback, got %q", listing.Title)
	}
	if listing.Company != "" {
		t.Errorf("expected empty company, got %q", listing.Company)
	}
}

func TestFetcher_CustomRules(t *testing.T) {
	page := `<html><body><div id="role">Staff Engineer</div><em class="org">Initech</em></body></html>`
	srv := servePage(t, http.StatusOK, page)

	f := NewFetcher(Rules{
		"title":   {"#role"},
		"company": {"em.org"},
	}, time.Second)

	listing, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Title != "Staff Engineer" {
		t.Errorf("unexpected title: %q", listing.Title)
	}
	if listing.Company != "Initech" {
		t.Errorf("unexpected company: %q", listing.Company)
	}
}

func TestFetcher_NotFoundStatus(t *testing.T) {
	srv := servePage(t, http.StatusNotFound, "gone")
	f := NewFetcher(nil, time.Second)

	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrListingUnreachable) {
		t.Errorf("expected ErrListingUnreachable, got %v", err)
	}
}

func TestFetcher_ConnectionRefused(t *testing.T) {
	srv := servePage(t, http.StatusOK, listingPage)
	url := srv.URL
	srv.Close()

	f := NewFetcher(nil, time.Second)
	_, err := f.Fetch(context.Background(), url)
	if !errors.Is(err, domain.ErrListingUnreachable) {
		t.Errorf("expected ErrListingUnreachable, got %v", err)
	}
}

func TestFetcher_InvalidURL(t *testing.T) {
	f := NewFetcher(nil, time.Second)

	_, err := f.Fetch(context.Background(), "http://host with spaces/")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
