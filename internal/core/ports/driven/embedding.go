package driven

import "context"

// EmbeddingService generates text embeddings.
// Failures (timeouts, malformed responses, empty vectors) must surface
// as errors so the enclosing job fails rather than silently degrading.
type EmbeddingService interface {
	// Embed generates one fixed-dimension vector per input text, in
	// input order. Implementations batch large inputs internally.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error
}
