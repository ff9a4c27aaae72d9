package model

import (
	"sort"
	"strings"
	"time"
)

// describePattern substitutes bound entity labels into an NL pattern,
// drops placeholders for free positions, and collapses whitespace.
func describePattern(pattern string, subject, object Term) string {
	out := pattern
	if subject.IsBound() {
		out = strings.ReplaceAll(out, "SUBJECT", subject.Entity.Label())
	} else {
		out = strings.ReplaceAll(out, "SUBJECT", "")
	}
	if object.IsBound() {
		out = strings.ReplaceAll(out, "OBJECT", object.Entity.Label())
	} else {
		out = strings.ReplaceAll(out, "OBJECT", "")
	}
	return strings.Join(strings.Fields(out), " ")
}

// RawBinding is one variable->value row returned by an endpoint, tagged
// with its source endpoint and the query that produced it.
type RawBinding struct {
	Vars      map[string]string `json:"vars"`
	Endpoint  string            `json:"endpoint"`        // Source endpoint name
	Template  string            `json:"template"`        // Originating statement template
	Query     string            `json:"query,omitempty"` // Query text that produced this row
	Certainty float64           `json:"certainty"`       // Endpoint-reported certainty, 1.0 when absent
}

// Fingerprint returns a structural-equality key over the variable
// assignments. Bindings from different endpoints with identical
// assignments share a fingerprint.
func (b RawBinding) Fingerprint() string {
	keys := make([]string, 0, len(b.Vars))
	for k := range b.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(b.Vars[k])
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

// Finding is a ranked, confidence-scored grouping of raw bindings
// representing one answer candidate.
type Finding struct {
	Description string       `json:"description"`
	Subject     string       `json:"subject"`    // Logical subject the finding is about
	Bindings    []RawBinding `json:"bindings"`   // Supporting evidence rows
	Confidence  float64      `json:"confidence"` // Combined confidence in [0,1]
	Rank        int          `json:"rank"`       // 1-based rank after ordering
}

// Diagnostic records a recovered, non-fatal problem during a run
type Diagnostic struct {
	Stage    string `json:"stage"`              // Pipeline stage that recorded it
	Endpoint string `json:"endpoint,omitempty"` // Endpoint involved, if any
	Message  string `json:"message"`
}

// Stats carries timing and per-stage counts for one request
type Stats struct {
	RequestID  string        `json:"request_id"`
	Elapsed    time.Duration `json:"elapsed"`
	Entities   int           `json:"entities"`
	Statements int           `json:"statements"`
	Queries    int           `json:"queries"`
	Bindings   int           `json:"bindings"`
	Findings   int           `json:"findings"`
}

// LLMSummary is an optional model-generated narrative. It is produced
// after ranking and never feeds back into confidence or ordering.
type LLMSummary struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Narrative string `json:"narrative"`
}

// Result is the immutable outcome of one pipeline run
type Result struct {
	Summary         string       `json:"summary"`
	DetailedResults []string     `json:"detailed_results"`          // Finding descriptions in rank order
	Findings        []Finding    `json:"findings,omitempty"`
	ConfidenceNote  string       `json:"confidence_note,omitempty"` // Plain-language confidence explanation
	Suggestions     []string     `json:"suggestions,omitempty"`     // Related-query hints
	Diagnostics     []Diagnostic `json:"diagnostics,omitempty"`
	Stats           Stats        `json:"stats"`
	LLM             *LLMSummary  `json:"llm,omitempty"`
}
