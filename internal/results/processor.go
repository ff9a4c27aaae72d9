// Package results groups raw bindings into ranked, confidence-scored
// findings.
package results

import (
	"math"
	"sort"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Processor scores and ranks bindings. Confidence combines the
// statement's extraction confidence with the endpoint-reported
// certainty using the configured strategy.
type Processor struct {
	combine          string
	extractionWeight float64
}

func NewProcessor(cfg model.ProcessorConfig) *Processor {
	w := cfg.ExtractionWeight
	if w <= 0 || w >= 1 {
		w = 0.6
	}
	return &Processor{
		combine:          cfg.ConfidenceCombine,
		extractionWeight: w,
	}
}

// group accumulates evidence rows sharing a logical subject
type group struct {
	subject     string
	description string
	bindings    []model.RawBinding
	confSum     float64
}

// Process groups bindings by logical subject and returns findings in
// descending confidence order with 1-based ranks. Ties keep first-seen
// order.
func (p *Processor) Process(stmts []model.RosettaStatement, bindings []model.RawBinding) []model.Finding {
	byTemplate := make(map[string]model.RosettaStatement, len(stmts))
	for _, s := range stmts {
		if _, ok := byTemplate[s.Template]; !ok {
			byTemplate[s.Template] = s
		}
	}

	groups := make(map[string]*group)
	var order []string
	for _, b := range bindings {
		stmt, ok := byTemplate[b.Template]
		if !ok {
			stmt = model.RosettaStatement{Template: b.Template, NLPattern: "SUBJECT OBJECT", Confidence: 0.5}
		}
		subject := logicalSubject(stmt, b)
		g, ok := groups[subject]
		if !ok {
			g = &group{subject: subject, description: describe(stmt, b)}
			groups[subject] = g
			order = append(order, subject)
		}
		g.bindings = append(g.bindings, b)
		g.confSum += p.combineConfidence(stmt.Confidence, b.Certainty)
	}

	findings := make([]model.Finding, 0, len(order))
	for _, subject := range order {
		g := groups[subject]
		findings = append(findings, model.Finding{
			Description: g.description,
			Subject:     g.subject,
			Bindings:    g.bindings,
			Confidence:  clamp01(g.confSum / float64(len(g.bindings))),
		})
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Confidence > findings[j].Confidence
	})
	for i := range findings {
		findings[i].Rank = i + 1
	}
	return findings
}

// combineConfidence merges extraction confidence and endpoint
// certainty. "min" takes the weaker signal; the default is a weighted
// geometric blend favoring the extraction side.
func (p *Processor) combineConfidence(extraction, certainty float64) float64 {
	extraction = clamp01(extraction)
	certainty = clamp01(certainty)
	if p.combine == "min" {
		return math.Min(extraction, certainty)
	}
	if extraction == 0 || certainty == 0 {
		return 0
	}
	return math.Pow(extraction, p.extractionWeight) * math.Pow(certainty, 1-p.extractionWeight)
}

// logicalSubject picks the value a finding is about: the bound subject
// entity, else the subject variable's binding, else the nanopub IRI,
// else the row's structural fingerprint.
func logicalSubject(stmt model.RosettaStatement, b model.RawBinding) string {
	if stmt.Subject.IsBound() && stmt.Subject.Entity.Value != "" {
		return stmt.Subject.Entity.Value
	}
	if stmt.Subject.Var != "" {
		if v, ok := b.Vars[stmt.Subject.Var]; ok && v != "" {
			return v
		}
	}
	for _, name := range []string{"subject", "np"} {
		if v, ok := b.Vars[name]; ok && v != "" {
			return v
		}
	}
	return b.Fingerprint()
}

// describe renders a finding description from the statement's NL
// pattern, preferring binding values for free positions.
func describe(stmt model.RosettaStatement, b model.RawBinding) string {
	out := stmt.NLPattern
	out = strings.ReplaceAll(out, "SUBJECT", positionLabel(stmt.Subject, b, "subject"))
	out = strings.ReplaceAll(out, "OBJECT", positionLabel(stmt.Object, b, "object"))
	if s := strings.Join(strings.Fields(out), " "); s != "" {
		return s
	}
	if v, ok := b.Vars["label"]; ok {
		return v
	}
	return b.Endpoint
}

func positionLabel(term model.Term, b model.RawBinding, fallbackVar string) string {
	if term.IsBound() {
		return term.Entity.Label()
	}
	if term.Var != "" {
		if v, ok := b.Vars[term.Var]; ok {
			return shortLabel(v)
		}
	}
	if v, ok := b.Vars[fallbackVar]; ok {
		return shortLabel(v)
	}
	return ""
}

// shortLabel trims an IRI down to its last path segment
func shortLabel(v string) string {
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return v
	}
	trimmed := strings.TrimRight(v, "/")
	if i := strings.LastIndexAny(trimmed, "/#"); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
