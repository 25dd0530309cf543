package domain

// Listing holds the fields extracted from a job-listing page by the
// data-driven selector table.
type Listing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Snippet is one retrieved piece of resume evidence with its distance
// score (lower is a closer match).
type Snippet struct {
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

// LetterRequest is the prompt pair sent to the letter writer.
type LetterRequest struct {
	// System is the writer's standing instruction
	System string

	// Prompt is the assembled job/evidence prompt
	Prompt string
}

// Letter is the structured cover letter returned by the writer. Field
// names match the structured response schema requested from the model.
type Letter struct {
	Letterhead    string `json:"letterhead"`
	Date          string `json:"date"`
	InsideAddress string `json:"inside_address"`
	Salutation    string `json:"salutation"`
	Reference     string `json:"reference"`
	Body          string `json:"letterbody"`
	Closing       string `json:"closing"`
	Signature     string `json:"signature"`
}
