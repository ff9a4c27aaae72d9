package results

import (
	"math"
	"testing"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

func citesStatement() model.RosettaStatement {
	return model.RosettaStatement{
		Template:   "cites",
		TypeURI:    "https://w3id.org/rosetta/Cites",
		Intent:     model.IntentCitation,
		Subject:    model.VarTerm("citing_work"),
		Object:     model.BoundTerm(model.Entity{Kind: model.EntityConcept, Text: "AlexNet", Value: "AlexNet", Confidence: 0.7}),
		NLPattern:  "SUBJECT cites OBJECT",
		Confidence: 0.8,
	}
}

func binding(citingWork string, certainty float64) model.RawBinding {
	return model.RawBinding{
		Vars:      map[string]string{"np": "https://w3id.org/np/" + citingWork, "citing_work": "https://doi.org/10.1000/" + citingWork},
		Endpoint:  "mock",
		Template:  "cites",
		Certainty: certainty,
	}
}

func TestProcessGroupsBySubject(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "product", ExtractionWeight: 0.6})
	stmts := []model.RosettaStatement{citesStatement()}
	bindings := []model.RawBinding{
		binding("vgg", 0.9),
		binding("vgg", 0.8),
		binding("resnet", 0.95),
	}
	findings := p.Process(stmts, bindings)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	for _, f := range findings {
		if f.Subject == "https://doi.org/10.1000/vgg" && len(f.Bindings) != 2 {
			t.Errorf("vgg group should hold 2 rows, got %d", len(f.Bindings))
		}
	}
}

func TestProcessRanksByConfidence(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "min"})
	stmts := []model.RosettaStatement{citesStatement()}
	bindings := []model.RawBinding{
		binding("weak", 0.2),
		binding("strong", 0.95),
	}
	findings := p.Process(stmts, bindings)
	if findings[0].Subject != "https://doi.org/10.1000/strong" {
		t.Errorf("highest confidence should rank first, got %s", findings[0].Subject)
	}
	if findings[0].Rank != 1 || findings[1].Rank != 2 {
		t.Errorf("ranks must be 1-based and sequential: %d, %d", findings[0].Rank, findings[1].Rank)
	}
	if findings[0].Confidence < findings[1].Confidence {
		t.Error("ordering must be descending confidence")
	}
}

func TestProcessStableTieOrder(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "min"})
	stmts := []model.RosettaStatement{citesStatement()}
	bindings := []model.RawBinding{
		binding("first", 0.5),
		binding("second", 0.5),
	}
	findings := p.Process(stmts, bindings)
	if findings[0].Subject != "https://doi.org/10.1000/first" {
		t.Errorf("ties must keep first-seen order, got %s first", findings[0].Subject)
	}
}

func TestCombineMin(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "min"})
	if got := p.combineConfidence(0.8, 0.3); got != 0.3 {
		t.Errorf("min combine: expected 0.3, got %v", got)
	}
}

func TestCombineWeightedProduct(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "product", ExtractionWeight: 0.6})
	got := p.combineConfidence(0.8, 0.5)
	want := math.Pow(0.8, 0.6) * math.Pow(0.5, 0.4)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got <= 0 || got >= 1 {
		t.Errorf("combined confidence out of range: %v", got)
	}
}

func TestCombineZeroConfidence(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{ConfidenceCombine: "product", ExtractionWeight: 0.6})
	if got := p.combineConfidence(0, 0.9); got != 0 {
		t.Errorf("zero extraction confidence must stay zero, got %v", got)
	}
}

func TestProcessDescription(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{})
	stmts := []model.RosettaStatement{citesStatement()}
	findings := p.Process(stmts, []model.RawBinding{binding("vgg", 0.9)})
	if findings[0].Description != "vgg cites AlexNet" {
		t.Errorf("unexpected description %q", findings[0].Description)
	}
}

func TestProcessEmptyBindings(t *testing.T) {
	p := NewProcessor(model.ProcessorConfig{})
	if findings := p.Process([]model.RosettaStatement{citesStatement()}, nil); len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}
