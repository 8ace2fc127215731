package ai

import "context"

// TextClassifier sends a prompt to an external classification capability
// and returns the raw text response. Used only by the Enricher; the rest
// of the system never sees the provider directly.
type TextClassifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}
