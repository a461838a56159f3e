package embedding

import "context"

// Provider generates a fixed-dimension embedding vector for a text. Calls
// are cancellable external I/O; failures propagate to the caller untouched.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// Model returns the provider's model identifier, stored alongside
	// embedding rows.
	Model() string
}
