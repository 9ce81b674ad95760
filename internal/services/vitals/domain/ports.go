package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Check(ctx context.Context) (Result, error)
}

// Searcher finds web pages about the subject
type Searcher interface {
	Search(ctx context.Context, q string) ([]Hit, error)
}

// Oracle answers a yes/no question
type Oracle interface {
	Ask(ctx context.Context, prompt string) (bool, error)
}
