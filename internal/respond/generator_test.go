package respond

import (
	"strings"
	"testing"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

func defaultGenerator() *Generator {
	return NewGenerator(
		model.ProcessorConfig{SummaryThreshold: 0.8},
		model.OutputConfig{MaxDetailed: 10},
	)
}

func citationFrame() model.IntentFrame {
	return model.IntentFrame{
		Question:   model.Question{Raw: "What papers cite AlexNet?", Normalized: "What papers cite AlexNet?"},
		Intent:     model.IntentCitation,
		Confidence: 0.8,
		Slots: []model.BoundSlot{
			{Name: "cited_work", Entity: model.Entity{Kind: model.EntityConcept, Text: "AlexNet", Value: "AlexNet", Confidence: 0.7}},
		},
	}
}

func finding(desc string, conf float64, rank int) model.Finding {
	return model.Finding{Description: desc, Subject: desc, Confidence: conf, Rank: rank}
}

func TestRenderCitationSummaryMentionsCitation(t *testing.T) {
	var res model.Result
	defaultGenerator().Render(citationFrame(), []model.Finding{
		finding("VGGNet cites AlexNet", 0.9, 1),
	}, &res)

	lower := strings.ToLower(res.Summary)
	if !strings.Contains(lower, "citation") && !strings.Contains(lower, "cite") {
		t.Errorf("citation summary must mention citations: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "VGGNet cites AlexNet") {
		t.Errorf("high-confidence summary should state the top result: %q", res.Summary)
	}
	if strings.Contains(res.Summary, "candidate") {
		t.Errorf("high-confidence summary must not hedge: %q", res.Summary)
	}
}

func TestRenderHedgedSummaryBelowThreshold(t *testing.T) {
	var res model.Result
	defaultGenerator().Render(citationFrame(), []model.Finding{
		finding("VGGNet cites AlexNet", 0.55, 1),
		finding("ResNet cites AlexNet", 0.5, 2),
	}, &res)

	if !strings.Contains(res.Summary, "strongest candidate") {
		t.Errorf("low-confidence summary should hedge: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "0.55") {
		t.Errorf("hedged summary should show the confidence: %q", res.Summary)
	}
}

func TestRenderNoResults(t *testing.T) {
	var res model.Result
	defaultGenerator().Render(citationFrame(), nil, &res)
	if !strings.Contains(res.Summary, "No matching nanopublications") {
		t.Errorf("unexpected empty-result summary: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "AlexNet") {
		t.Errorf("summary should name the topic: %q", res.Summary)
	}
	if res.ConfidenceNote != "" {
		t.Error("no findings means no confidence note")
	}
}

func TestRenderNoResultsWithTransportFailure(t *testing.T) {
	res := model.Result{
		Diagnostics: []model.Diagnostic{
			{Stage: "execute", Endpoint: "nanopub-network", Message: "connection refused"},
		},
	}
	defaultGenerator().Render(citationFrame(), nil, &res)
	if !strings.Contains(res.Summary, "unreachable") {
		t.Errorf("transport failure should produce the network variant: %q", res.Summary)
	}
}

func TestRenderDetailedLines(t *testing.T) {
	var res model.Result
	defaultGenerator().Render(citationFrame(), []model.Finding{
		finding("VGGNet cites AlexNet", 0.9, 1),
		finding("ResNet cites AlexNet", 0.6, 2),
		finding("Some page mentions AlexNet", 0.3, 3),
	}, &res)

	if len(res.DetailedResults) != 3 {
		t.Fatalf("expected 3 detailed lines, got %d", len(res.DetailedResults))
	}
	if !strings.HasPrefix(res.DetailedResults[0], "1. ✓") {
		t.Errorf("strong finding should carry ✓: %q", res.DetailedResults[0])
	}
	if !strings.HasPrefix(res.DetailedResults[1], "2. ~") {
		t.Errorf("moderate finding should carry ~: %q", res.DetailedResults[1])
	}
	if !strings.HasPrefix(res.DetailedResults[2], "3. ?") {
		t.Errorf("weak finding should carry ?: %q", res.DetailedResults[2])
	}
}

func TestRenderDetailedCapped(t *testing.T) {
	g := NewGenerator(model.ProcessorConfig{}, model.OutputConfig{MaxDetailed: 2})
	var res model.Result
	g.Render(citationFrame(), []model.Finding{
		finding("a", 0.9, 1), finding("b", 0.8, 2), finding("c", 0.7, 3),
	}, &res)
	if len(res.DetailedResults) != 2 {
		t.Errorf("detailed lines must honor the cap, got %d", len(res.DetailedResults))
	}
}

func TestRenderSuggestions(t *testing.T) {
	var res model.Result
	defaultGenerator().Render(citationFrame(), nil, &res)
	if len(res.Suggestions) == 0 {
		t.Fatal("expected follow-up suggestions")
	}
	found := false
	for _, s := range res.Suggestions {
		if strings.Contains(s, "AlexNet") {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions should reference the question's entity: %v", res.Suggestions)
	}
}

func TestRenderUnknownFrameSuggestsRephrasing(t *testing.T) {
	frame := model.IntentFrame{
		Question: model.Question{Raw: "???", Normalized: ""},
		Intent:   model.IntentUnknown,
	}
	var res model.Result
	defaultGenerator().Render(frame, nil, &res)
	if len(res.Suggestions) != 1 || !strings.Contains(res.Suggestions[0], "rephrasing") {
		t.Errorf("unexpected suggestions for an unclassifiable question: %v", res.Suggestions)
	}
}

func TestConfidenceNoteTiers(t *testing.T) {
	g := defaultGenerator()
	cases := []struct {
		conf float64
		want string
	}{
		{0.9, "High confidence"},
		{0.6, "Moderate confidence"},
		{0.2, "Low confidence"},
	}
	for _, c := range cases {
		var res model.Result
		g.Render(citationFrame(), []model.Finding{finding("x", c.conf, 1)}, &res)
		if !strings.HasPrefix(res.ConfidenceNote, c.want) {
			t.Errorf("confidence %v: expected note starting %q, got %q", c.conf, c.want, res.ConfidenceNote)
		}
	}
}
