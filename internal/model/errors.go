package model

import "errors"

var (
	// ErrDimensionMismatch means a query vector does not match the target
	// collection's dimensionality. Fatal for the request, never coerced.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbedding is the terminal failure of the embedding provider after
	// retries are exhausted.
	ErrEmbedding = errors.New("embedding failed")

	// ErrCompletion is the terminal failure of the chat completion provider
	// after retries are exhausted.
	ErrCompletion = errors.New("completion failed")
)
