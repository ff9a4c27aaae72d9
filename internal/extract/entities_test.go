package extract

import (
	"reflect"
	"testing"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

func TestExtract_ORCIDNormalization(t *testing.T) {
	extractor := NewEntityExtractor()

	entities := extractor.Extract("What papers by 0000-0002-1784-2920?")

	var ids []model.Entity
	for _, e := range entities {
		if e.Kind == model.EntityIdentifier {
			ids = append(ids, e)
		}
	}

	if len(ids) != 1 {
		t.Fatalf("expected 1 identifier entity, got %d (%v)", len(ids), ids)
	}
	if ids[0].Value != "https://orcid.org/0000-0002-1784-2920" {
		t.Errorf("expected canonical ORCID URI, got %q", ids[0].Value)
	}
	if ids[0].Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 for exact identifier, got %f", ids[0].Confidence)
	}
}

func TestExtract_DOITrailingPunctuation(t *testing.T) {
	extractor := NewEntityExtractor()

	entities := extractor.Extract("What cites 10.1038/nature12373?")

	found := false
	for _, e := range entities {
		if e.Kind == model.EntityIdentifier {
			found = true
			if e.Text != "10.1038/nature12373" {
				t.Errorf("expected trailing punctuation stripped, got %q", e.Text)
			}
			if e.Value != "https://doi.org/10.1038/nature12373" {
				t.Errorf("expected canonical DOI URI, got %q", e.Value)
			}
		}
	}
	if !found {
		t.Fatal("expected a DOI identifier entity")
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	extractor := NewEntityExtractor()

	for _, input := range []string{"", "   ", "\t\n"} {
		if got := extractor.Extract(input); len(got) != 0 {
			t.Errorf("expected no entities for %q, got %v", input, got)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	extractor := NewEntityExtractor()
	question := `Papers by "Deep Residual Learning" citing AlexNet at 300 K?`

	first := extractor.Extract(question)
	second := extractor.Extract(question)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestExtract_QuotedTitleWinsOverInnerConcepts(t *testing.T) {
	extractor := NewEntityExtractor()

	entities := extractor.Extract(`What papers cite "ImageNet Classification"?`)

	for _, e := range entities {
		if e.Kind == model.EntityTitle {
			if e.Text != "ImageNet Classification" {
				t.Errorf("expected full quoted span, got %q", e.Text)
			}
			return
		}
	}
	t.Fatal("expected a title entity for the quoted string")
}

func TestExtract_ConceptAndKinds(t *testing.T) {
	extractor := NewEntityExtractor()

	tests := []struct {
		text string
		kind model.EntityKind
		want string
	}{
		{"What papers cite AlexNet?", model.EntityConcept, "AlexNet"},
		{"Where is Utrecht University located?", model.EntityInstitution, "Utrecht University"},
		{"What has a mass of 2.5 kg?", model.EntityMeasurement, "2.5 kg"},
		{"What did Marie Curie discover?", model.EntityAuthor, "Marie Curie"},
	}

	for _, tt := range tests {
		entities := extractor.Extract(tt.text)
		found := false
		for _, e := range entities {
			if e.Kind == tt.kind && e.Text == tt.want {
				found = true
				if e.Confidence <= 0 || e.Confidence > 1 {
					t.Errorf("%q: confidence out of range: %f", tt.text, e.Confidence)
				}
			}
		}
		if !found {
			t.Errorf("%q: expected %s entity %q, got %v", tt.text, tt.kind, tt.want, entities)
		}
	}
}

func TestExtract_OverlapLongestMatchWins(t *testing.T) {
	extractor := NewEntityExtractor()

	// The ORCID must not be fragmented into number concepts
	entities := extractor.Extract("Work by 0000-0002-1784-2920 on FAIR2Adapt")

	for _, e := range entities {
		if e.Kind == model.EntityConcept && e.Start >= 8 && e.End <= 27 {
			t.Errorf("concept span %q overlaps the identifier", e.Text)
		}
	}
}
