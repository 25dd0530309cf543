package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

const letterSystemPrompt = `You write tailored cover letters. Use ONLY the provided snippets as factual evidence.
Do not invent employers, dates, titles, or skills not present in snippets.
Do not reference snippets, but use the content directly.`

// buildLetterPrompt assembles the writer prompt from the listing fields
// and the retrieved evidence: description-driven snippets plus the
// applicant identity snippets.
func buildLetterPrompt(listing *domain.Listing, evidence, applicant []domain.Snippet, now time.Time) *domain.LetterRequest {
	var eb strings.Builder
	for i, s := range evidence {
		fmt.Fprintf(&eb, "[Snippet %d] %s\n\n", i+1, s.Text)
	}

	var ab strings.Builder
	for i, s := range applicant {
		fmt.Fprintf(&ab, "[Applicant Snippet %d] %s\n\n", i+1, s.Text)
	}

	prompt := fmt.Sprintf(`Job title:
%s

Job company:
%s

Job location:
%s

Job description:
%s

Evidence snippets:
%s
Applicant details snippets:
%s
Date of application:
%s

Write a one-page cover letter containing all of the following:
- letterhead
<Applicant name>
<Applicant contact number>
<Applicant email address>
<Applicant location>
- date
<Date of application>
- inside address
<Hiring manager's name or "Hiring Manager">
<Job company>
<Job location>
- salutation
Dear <Hiring manager's name or "Hiring Manager">
- reference line
Re: <Job title> position
- letter body
<2 paragraphs explaining why the applicant is a good fit for the role and the company's needs explicitly>
<3 bullet points referencing snippets that support the applicant's suitability in STAR format (do not list as Situation, Task, Action, Result, just write each STAR as a bullet point)>
- closing
Thank you for considering my application. I look forward to the opportunity to discuss how I can contribute to <Company> further.
- signature
Sincerely yours,
<Applicant name>`,
		listing.Title,
		listing.Company,
		listing.Location,
		listing.Description,
		eb.String(),
		ab.String(),
		now.Format("January 2, 2006"),
	)

	return &domain.LetterRequest{
		System: letterSystemPrompt,
		Prompt: prompt,
	}
}

// marshalLetter serializes a letter for durable storage.
func marshalLetter(letter *domain.Letter) ([]byte, error) {
	data, err := json.Marshal(letter)
	if err != nil {
		return nil, fmt.Errorf("marshal letter: %w", err)
	}
	return data, nil
}
