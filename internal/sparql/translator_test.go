package sparql

import (
	"strings"
	"testing"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

func newTestTranslator() *Translator {
	return NewTranslator(model.ProcessorConfig{TextSearchLimit: 5, ResultLimit: 25})
}

func TestTranslateBoundIRI(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "authored_by",
		TypeURI:  "https://w3id.org/rosetta/AuthoredBy",
		Subject:  model.VarTerm("work"),
		Object: model.BoundTerm(model.Entity{
			Kind:  model.EntityIdentifier,
			Text:  "0000-0002-1784-2920",
			Value: "https://orcid.org/0000-0002-1784-2920",
		}),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, "<https://orcid.org/0000-0002-1784-2920>") {
		t.Error("bound IRI should appear as a term, not a filter")
	}
	if strings.Contains(q.Query, "0000-0002-1784-2920\"") {
		t.Error("IRI value must not be matched as a literal")
	}
	if !strings.Contains(q.Query, "?work") {
		t.Error("free subject should keep its slot-derived variable name")
	}
	if !strings.Contains(q.Query, "LIMIT 25") {
		t.Errorf("expected result limit 25 in query:\n%s", q.Query)
	}
}

func TestTranslateBoundLiteral(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "cites",
		TypeURI:  "https://w3id.org/rosetta/Cites",
		Subject:  model.VarTerm("citing_work"),
		Object: model.BoundTerm(model.Entity{
			Kind: model.EntityConcept, Text: "AlexNet", Value: "AlexNet",
		}),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, `CONTAINS(LCASE(STR(?cited_workLabel)), "alexnet")`) {
		t.Errorf("bound literal should become a lowercase CONTAINS filter:\n%s", q.Query)
	}
	if !strings.Contains(q.Query, "?statement a <https://w3id.org/rosetta/Cites>") {
		t.Error("statement type constraint missing")
	}
}

func TestTranslateLiteralEscaping(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "defined_as",
		TypeURI:  "https://w3id.org/rosetta/DefinedAs",
		Subject: model.BoundTerm(model.Entity{
			Kind: model.EntityTitle, Text: `say "hi"` + "\\", Value: `say "hi"` + "\\",
		}),
		Object: model.VarTerm("definition"),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, `say \"hi\"\\`) {
		t.Errorf("quotes and backslashes must be escaped:\n%s", q.Query)
	}
}

func TestTranslateIRIEscaping(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "cites",
		TypeURI:  "https://w3id.org/rosetta/Cites",
		Subject:  model.VarTerm("citing_work"),
		Object: model.BoundTerm(model.Entity{
			Kind:  model.EntityIdentifier,
			Text:  "10.1000/a>b c",
			Value: "https://doi.org/10.1000/a>b c",
		}),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, "<https://doi.org/10.1000/a%3Eb%20c>") {
		t.Errorf("IRI-breaking characters must be percent-encoded:\n%s", q.Query)
	}
	if strings.Contains(q.Query, "a>b") {
		t.Errorf("raw '>' must never reach the query:\n%s", q.Query)
	}
}

func TestTranslateReservedVarRenamed(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "related_to",
		TypeURI:  "https://w3id.org/rosetta/RelatedTo",
		Subject:  model.VarTerm("np"),
		Object:   model.VarTerm("statement"),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, "?np_term") || !strings.Contains(q.Query, "?statement_term") {
		t.Errorf("reserved variable names must be renamed:\n%s", q.Query)
	}
}

func TestTranslateTextSearch(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "text_search",
		Object: model.BoundTerm(model.Entity{
			Kind: model.EntityConcept, Text: "machine learning", Value: "machine learning",
		}),
	}
	q, err := newTestTranslator().Translate(stmt, "local")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.Query, `CONTAINS(LCASE(STR(?label)), "machine learning")`) {
		t.Errorf("text search filter missing:\n%s", q.Query)
	}
	if !strings.Contains(q.Query, "LIMIT 5") {
		t.Error("text search should use its own lower limit")
	}
	if q.Endpoint != "local" {
		t.Errorf("endpoint hint dropped, got %q", q.Endpoint)
	}
	if q.Limit != 5 {
		t.Errorf("expected limit 5, got %d", q.Limit)
	}
}

func TestTranslateTextSearchWithoutText(t *testing.T) {
	stmt := model.RosettaStatement{Template: "text_search", Object: model.VarTerm("text")}
	if _, err := newTestTranslator().Translate(stmt, ""); err == nil {
		t.Fatal("expected error for text search with no search text")
	}
}

func TestTranslateUnknownTemplate(t *testing.T) {
	stmt := model.RosettaStatement{Template: "frobnicate"}
	if _, err := newTestTranslator().Translate(stmt, ""); err == nil {
		t.Fatal("expected error for template with no type URI")
	}
}

func TestTranslatePrefixes(t *testing.T) {
	stmt := model.RosettaStatement{
		Template: "located_in",
		TypeURI:  "https://w3id.org/rosetta/LocatedIn",
		Subject:  model.VarTerm("located_thing"),
		Object:   model.VarTerm("place"),
	}
	q, err := newTestTranslator().Translate(stmt, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, prefix := range []string{
		"PREFIX np: <http://www.nanopub.org/nschema#>",
		"PREFIX rosetta: <https://w3id.org/rosetta/>",
		"PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>",
	} {
		if !strings.Contains(q.Query, prefix) {
			t.Errorf("missing prologue line %q", prefix)
		}
	}
	if q.Language != "sparql" {
		t.Errorf("unexpected language %q", q.Language)
	}
}
