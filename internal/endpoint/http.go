package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/util"
)

// HTTPEndpoint talks to a live SPARQL endpoint over HTTP
type HTTPEndpoint struct {
	name      string
	sparqlURL string
	client    *http.Client
	userAgent string
	maxBytes  int64
	robots    *util.RobotsChecker
}

// NewHTTPEndpoint creates an endpoint for the given SPARQL URL. The
// HTTP config supplies the shared client concerns.
func NewHTTPEndpoint(cfg model.EndpointConfig, httpCfg model.HTTPConfig) *HTTPEndpoint {
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = httpCfg.Timeout.Std()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
	return &HTTPEndpoint{
		name:      cfg.Name,
		sparqlURL: cfg.URL,
		client:    client,
		userAgent: httpCfg.UserAgent,
		maxBytes:  maxBytes,
		robots:    util.NewRobotsChecker(httpCfg.UserAgent, timeout),
	}
}

func (e *HTTPEndpoint) Name() string { return e.name }

// sparqlResults mirrors the SPARQL 1.1 JSON results format
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// ExecuteQuery POSTs the query as a form and parses the JSON results.
// Endpoint-reported certainty comes from a "certainty" or "confidence"
// variable when present, defaulting to 1.0.
func (e *HTTPEndpoint) ExecuteQuery(ctx context.Context, q model.CompiledQuery) ([]model.RawBinding, error) {
	form := url.Values{"query": {q.Query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.sparqlURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query on %s: %w", e.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("endpoint %s returned %d: %s", e.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sparqlResults
	dec := json.NewDecoder(io.LimitReader(resp.Body, e.maxBytes))
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode results from %s: %w", e.name, err)
	}

	out := make([]model.RawBinding, 0, len(parsed.Results.Bindings))
	for _, row := range parsed.Results.Bindings {
		vars := make(map[string]string, len(row))
		certainty := 1.0
		for name, cell := range row {
			vars[name] = cell.Value
			if name == "certainty" || name == "confidence" {
				if v, err := strconv.ParseFloat(cell.Value, 64); err == nil && v >= 0 && v <= 1 {
					certainty = v
				}
			}
		}
		out = append(out, model.RawBinding{
			Vars:      vars,
			Endpoint:  e.name,
			Template:  q.Statement.Template,
			Query:     q.Query,
			Certainty: certainty,
		})
	}
	return out, nil
}

// SearchText runs an ad hoc label search without going through the
// statement translation layer.
func (e *HTTPEndpoint) SearchText(ctx context.Context, text string, limit int) ([]model.RawBinding, error) {
	if limit <= 0 {
		limit = 20
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(strings.ToLower(text))
	query := fmt.Sprintf(`PREFIX np: <http://www.nanopub.org/nschema#>
SELECT DISTINCT ?np ?subject ?label WHERE {
  ?np np:hasAssertion ?assertion .
  GRAPH ?assertion {
    ?subject ?p ?label .
    FILTER(isLiteral(?label))
    FILTER(CONTAINS(LCASE(STR(?label)), "%s"))
  }
} LIMIT %d
`, escaped, limit)
	return e.ExecuteQuery(ctx, model.CompiledQuery{
		Query:     query,
		Language:  "sparql",
		Statement: model.RosettaStatement{Template: "text_search"},
		Limit:     limit,
	})
}

// FetchResource dereferences an IRI, honoring robots.txt. RDF content
// is returned as-is; HTML falls back to visible-text extraction.
func (e *HTTPEndpoint) FetchResource(ctx context.Context, iri string) (*Document, error) {
	if allowed, _, _ := e.robots.CanFetch(ctx, iri); !allowed {
		return nil, fmt.Errorf("fetch %s: disallowed by robots.txt", iri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/trig, text/turtle;q=0.9, application/rdf+xml;q=0.8, text/html;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", iri, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", iri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	text := string(body)
	if strings.Contains(contentType, "text/html") {
		text = extractVisibleText(body)
	}

	return &Document{
		IRI:         iri,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
		Text:        text,
	}, nil
}

// Close drops idle connections. The client itself stays usable.
func (e *HTTPEndpoint) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// extractVisibleText pulls readable text out of an HTML document,
// skipping script and style subtrees.
func extractVisibleText(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return string(body)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String())
}
