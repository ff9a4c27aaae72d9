// Package endpoint defines the query endpoint abstraction and its
// live and mock implementations.
package endpoint

import (
	"context"
	"fmt"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Endpoint executes compiled queries against one nanopublication store.
// Implementations must be safe for concurrent use.
type Endpoint interface {
	// Name returns the registered endpoint name
	Name() string

	// ExecuteQuery runs a compiled query and returns raw binding rows.
	// An empty result is not an error.
	ExecuteQuery(ctx context.Context, q model.CompiledQuery) ([]model.RawBinding, error)

	// SearchText runs a free-text search over assertion labels
	SearchText(ctx context.Context, text string, limit int) ([]model.RawBinding, error)

	// FetchResource dereferences an IRI and returns its textual content
	FetchResource(ctx context.Context, iri string) (*Document, error)

	// Close releases held connections. Safe to call more than once.
	Close() error
}

// Document is the dereferenced content of one resource IRI
type Document struct {
	IRI         string `json:"iri"`
	FinalURL    string `json:"final_url"` // After redirects
	ContentType string `json:"content_type"`
	Text        string `json:"text"`      // Extracted textual content
}

// NotFoundError reports that a named endpoint is not registered. It is
// the only endpoint error that aborts a pipeline run.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "endpoint: no endpoints registered"
	}
	return fmt.Sprintf("endpoint: %q not registered", e.Name)
}
