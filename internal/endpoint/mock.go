package endpoint

import (
	"context"
	"strings"
	"sync"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// mockFixture is one canned answer row keyed by substring match
type mockFixture struct {
	keyword   string
	vars      map[string]string
	certainty float64
}

// MockEndpoint serves deterministic fixtures for tests and offline
// runs. Matching is substring-based over the lowercased query text.
type MockEndpoint struct {
	name string

	mu       sync.Mutex
	fixtures []mockFixture
	docs     map[string]*Document
	closed   bool
	closeErr error
}

// NewMockEndpoint creates a mock with a small built-in corpus of
// machine learning citation fixtures.
func NewMockEndpoint(name string) *MockEndpoint {
	m := &MockEndpoint{name: name, docs: make(map[string]*Document)}
	m.AddBinding("alexnet", map[string]string{
		"np":          "https://w3id.org/np/mock-alexnet-1",
		"citing_work": "https://doi.org/10.1000/vgg",
		"label":       "VGGNet cites AlexNet",
	}, 0.95)
	m.AddBinding("alexnet", map[string]string{
		"np":          "https://w3id.org/np/mock-alexnet-2",
		"citing_work": "https://doi.org/10.1000/resnet",
		"label":       "ResNet cites AlexNet",
	}, 0.9)
	m.AddBinding("crispr", map[string]string{
		"np":    "https://w3id.org/np/mock-crispr-1",
		"term":  "CRISPR",
		"label": "CRISPR is defined as a genome editing technology",
	}, 0.92)
	return m
}

func (m *MockEndpoint) Name() string { return m.name }

// AddBinding registers a fixture row returned for queries containing
// the keyword (case-insensitive).
func (m *MockEndpoint) AddBinding(keyword string, vars map[string]string, certainty float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures = append(m.fixtures, mockFixture{
		keyword:   strings.ToLower(keyword),
		vars:      vars,
		certainty: certainty,
	})
}

// AddDocument registers a canned document for FetchResource
func (m *MockEndpoint) AddDocument(iri string, doc *Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[iri] = doc
}

// SetCloseErr makes Close return the given error
func (m *MockEndpoint) SetCloseErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// Closed reports whether Close has been called
func (m *MockEndpoint) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockEndpoint) ExecuteQuery(ctx context.Context, q model.CompiledQuery) ([]model.RawBinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.match(strings.ToLower(q.Query), q.Statement.Template, q.Query, q.Limit), nil
}

func (m *MockEndpoint) SearchText(ctx context.Context, text string, limit int) ([]model.RawBinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.match(strings.ToLower(text), "text_search", text, limit), nil
}

func (m *MockEndpoint) FetchResource(ctx context.Context, iri string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[iri]; ok {
		return doc, nil
	}
	return &Document{IRI: iri, FinalURL: iri, ContentType: "text/plain", Text: ""}, nil
}

func (m *MockEndpoint) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

func (m *MockEndpoint) match(needle, template, query string, limit int) []model.RawBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RawBinding
	for _, f := range m.fixtures {
		if !strings.Contains(needle, f.keyword) {
			continue
		}
		vars := make(map[string]string, len(f.vars))
		for k, v := range f.vars {
			vars[k] = v
		}
		out = append(out, model.RawBinding{
			Vars:      vars,
			Endpoint:  m.name,
			Template:  template,
			Query:     query,
			Certainty: f.certainty,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
