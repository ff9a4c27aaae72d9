// Package respond renders ranked findings into natural-language
// summaries, detailed result lines and follow-up suggestions.
package respond

import (
	"fmt"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Generator turns findings into the user-facing parts of a result
type Generator struct {
	summaryThreshold float64
	maxDetailed      int
}

func NewGenerator(proc model.ProcessorConfig, out model.OutputConfig) *Generator {
	threshold := proc.SummaryThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	maxDetailed := out.MaxDetailed
	if maxDetailed <= 0 {
		maxDetailed = 10
	}
	return &Generator{summaryThreshold: threshold, maxDetailed: maxDetailed}
}

// Render fills the summary, detailed lines, confidence note and
// suggestions on the result. Findings are assumed rank-ordered.
func (g *Generator) Render(frame model.IntentFrame, findings []model.Finding, res *model.Result) {
	res.Summary = g.summary(frame, findings, res.Diagnostics)
	res.DetailedResults = g.detailed(findings)
	res.ConfidenceNote = g.confidenceNote(findings)
	res.Suggestions = g.suggestions(frame)
}

func (g *Generator) summary(frame model.IntentFrame, findings []model.Finding, diags []model.Diagnostic) string {
	topic := frameTopic(frame)
	if len(findings) == 0 {
		if hasTransportFailure(diags) {
			return fmt.Sprintf("Could not retrieve results for %s: one or more endpoints were unreachable. Please try again later.", topic)
		}
		return fmt.Sprintf("No matching nanopublications were found for %s.", topic)
	}

	top := findings[0]
	count := countSentence(frame.Intent, len(findings), topic)
	if top.Confidence >= g.summaryThreshold {
		return fmt.Sprintf("%s %s.", count, top.Description)
	}
	return fmt.Sprintf("%s The strongest candidate is: %s (confidence %.2f).", count, top.Description, top.Confidence)
}

// countSentence phrases the result count in terms of the question's
// intent.
func countSentence(intent model.Intent, n int, topic string) string {
	noun := "result"
	switch intent {
	case model.IntentCitation:
		noun = "citation"
	case model.IntentAuthorship:
		noun = "authorship record"
	case model.IntentDefinition:
		noun = "definition"
	case model.IntentMeasurement:
		noun = "measurement"
	case model.IntentLocation:
		noun = "location record"
	case model.IntentRelation:
		noun = "related statement"
	}
	if n == 1 {
		return fmt.Sprintf("Found 1 %s for %s.", noun, topic)
	}
	return fmt.Sprintf("Found %d %ss for %s.", n, noun, topic)
}

// frameTopic names what the question was about
func frameTopic(frame model.IntentFrame) string {
	if ents := frame.Entities(); len(ents) > 0 {
		return fmt.Sprintf("%q", ents[0].Label())
	}
	if len(frame.KeyPhrases) > 0 {
		return fmt.Sprintf("%q", strings.Join(frame.KeyPhrases, " "))
	}
	return "this question"
}

func hasTransportFailure(diags []model.Diagnostic) bool {
	for _, d := range diags {
		if d.Stage == "execute" && d.Endpoint != "" {
			return true
		}
	}
	return false
}

// detailed renders rank-ordered result lines with a confidence marker
func (g *Generator) detailed(findings []model.Finding) []string {
	var out []string
	for _, f := range findings {
		if len(out) >= g.maxDetailed {
			break
		}
		out = append(out, fmt.Sprintf("%d. %s %s (confidence %.2f)", f.Rank, marker(f.Confidence), f.Description, f.Confidence))
	}
	return out
}

func marker(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "✓"
	case confidence >= 0.5:
		return "~"
	default:
		return "?"
	}
}

func (g *Generator) confidenceNote(findings []model.Finding) string {
	if len(findings) == 0 {
		return ""
	}
	top := findings[0].Confidence
	switch {
	case top >= g.summaryThreshold:
		return "High confidence: the top result matches the question closely and carries strong endpoint certainty."
	case top >= 0.5:
		return "Moderate confidence: the results are plausible matches but the question allowed more than one interpretation."
	default:
		return "Low confidence: these results come from broad text matching and may be unrelated to the question."
	}
}

// suggestions proposes follow-up questions from the frame's entities
func (g *Generator) suggestions(frame model.IntentFrame) []string {
	ents := frame.Entities()
	if len(ents) == 0 {
		return []string{
			"Try rephrasing the question with a specific term, DOI or ORCID.",
		}
	}
	label := ents[0].Label()
	var out []string
	switch frame.Intent {
	case model.IntentCitation:
		out = append(out,
			fmt.Sprintf("Who authored %s?", label),
			fmt.Sprintf("What is %s?", label),
		)
	case model.IntentAuthorship:
		out = append(out,
			fmt.Sprintf("What papers cite %s?", label),
		)
	case model.IntentDefinition:
		out = append(out,
			fmt.Sprintf("What papers cite %s?", label),
			fmt.Sprintf("What is related to %s?", label),
		)
	case model.IntentMeasurement, model.IntentLocation, model.IntentRelation:
		out = append(out,
			fmt.Sprintf("What is %s?", label),
		)
	default:
		out = append(out,
			fmt.Sprintf("What papers cite %s?", label),
			fmt.Sprintf("What is %s?", label),
		)
	}
	return out
}
