// Package sparql compiles Rosetta statements into executable SPARQL
// queries against nanopublication endpoints.
package sparql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/rosetta"
)

const prologue = `PREFIX np: <http://www.nanopub.org/nschema#>
PREFIX npa: <http://purl.org/nanopub/admin/>
PREFIX rosetta: <https://w3id.org/rosetta/>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// Variable names the query skeleton claims for itself. Slot-derived
// variables are renamed on collision.
var reservedVars = map[string]bool{
	"np":        true,
	"assertion": true,
	"statement": true,
	"label":     true,
	"certainty": true,
}

var varSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Translator compiles statements into SPARQL with configured row limits.
type Translator struct {
	textSearchLimit int
	resultLimit     int
}

func NewTranslator(cfg model.ProcessorConfig) *Translator {
	t := &Translator{
		textSearchLimit: cfg.TextSearchLimit,
		resultLimit:     cfg.ResultLimit,
	}
	if t.textSearchLimit <= 0 {
		t.textSearchLimit = 20
	}
	if t.resultLimit <= 0 {
		t.resultLimit = 50
	}
	return t
}

// Translate compiles one statement into a query. The endpoint hint is
// carried through untouched; "" means default or fan-out downstream.
func (t *Translator) Translate(stmt model.RosettaStatement, endpointHint string) (model.CompiledQuery, error) {
	if stmt.Template == rosetta.TextSearchTemplate {
		return t.textSearch(stmt, endpointHint)
	}
	if stmt.TypeURI == "" {
		return model.CompiledQuery{}, fmt.Errorf("translate: statement template %q has no type URI", stmt.Template)
	}
	return t.structured(stmt, endpointHint)
}

// structured compiles a typed statement query. Bound IRIs become terms,
// bound literals become case-insensitive label filters, free terms
// become projected variables.
func (t *Translator) structured(stmt model.RosettaStatement, endpointHint string) (model.CompiledQuery, error) {
	subjVar := termVar(stmt.Subject, "subject", nil)
	objVar := termVar(stmt.Object, "object", map[string]bool{subjVar: true})

	var body strings.Builder
	body.WriteString("  ?np np:hasAssertion ?assertion .\n")
	body.WriteString("  GRAPH ?assertion {\n")
	fmt.Fprintf(&body, "    ?statement a <%s> .\n", stmt.TypeURI)
	writeTermPattern(&body, "rosetta:hasSubject", stmt.Subject, subjVar)
	writeTermPattern(&body, "rosetta:hasObject", stmt.Object, objVar)
	body.WriteString("  }\n")
	body.WriteString("  OPTIONAL { ?np npa:hasValidSignatureForPublicKey ?sig }\n")
	body.WriteString("  OPTIONAL { ?statement rosetta:hasConfidence ?certainty }\n")

	query := fmt.Sprintf("%sSELECT DISTINCT ?np ?statement ?%s ?%s ?certainty WHERE {\n%s} LIMIT %d\n",
		prologue, subjVar, objVar, body.String(), t.resultLimit)

	return model.CompiledQuery{
		Query:     query,
		Language:  "sparql",
		Statement: stmt,
		Endpoint:  endpointHint,
		Limit:     t.resultLimit,
	}, nil
}

// textSearch compiles the fallback full-text query over assertion
// labels. The search text comes from the statement's bound object.
func (t *Translator) textSearch(stmt model.RosettaStatement, endpointHint string) (model.CompiledQuery, error) {
	if !stmt.Object.IsBound() || strings.TrimSpace(stmt.Object.Entity.Value) == "" {
		return model.CompiledQuery{}, fmt.Errorf("translate: text search statement has no search text")
	}
	text := escapeLiteral(strings.ToLower(strings.TrimSpace(stmt.Object.Entity.Value)))

	query := fmt.Sprintf(`%sSELECT DISTINCT ?np ?subject ?label WHERE {
  ?np np:hasAssertion ?assertion .
  GRAPH ?assertion {
    ?subject ?p ?label .
    FILTER(isLiteral(?label))
    FILTER(CONTAINS(LCASE(STR(?label)), "%s"))
  }
} LIMIT %d
`, prologue, text, t.textSearchLimit)

	return model.CompiledQuery{
		Query:     query,
		Language:  "sparql",
		Statement: stmt,
		Endpoint:  endpointHint,
		Limit:     t.textSearchLimit,
	}, nil
}

// writeTermPattern emits the triple pattern for one statement position.
func writeTermPattern(body *strings.Builder, predicate string, term model.Term, varName string) {
	if term.IsBound() && term.Entity.IsIRI() {
		iri := escapeIRI(term.Entity.Value)
		fmt.Fprintf(body, "    ?statement %s <%s> .\n", predicate, iri)
		fmt.Fprintf(body, "    BIND(<%s> AS ?%s)\n", iri, varName)
		return
	}
	fmt.Fprintf(body, "    ?statement %s ?%s .\n", predicate, varName)
	if term.IsBound() {
		text := escapeLiteral(strings.ToLower(term.Entity.Label()))
		fmt.Fprintf(body, "    ?%s rdfs:label|rosetta:hasLabel ?%sLabel .\n", varName, varName)
		fmt.Fprintf(body, "    FILTER(CONTAINS(LCASE(STR(?%sLabel)), \"%s\"))\n", varName, text)
	}
}

// termVar derives the projected variable name for one position.
func termVar(term model.Term, fallback string, taken map[string]bool) string {
	name := term.Var
	if name == "" {
		name = fallback
	}
	name = varSanitizer.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "v_" + name
	}
	if reservedVars[name] || taken[name] {
		name += "_term"
	}
	return name
}

// escapeIRI percent-encodes the characters SPARQL forbids between IRI
// brackets, so identifier values like DOIs cannot break out of the
// <> term they are embedded in.
func escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r <= 0x20, r == '<', r == '>', r == '"', r == '{', r == '}',
			r == '|', r == '\\', r == '^', r == '`':
			fmt.Fprintf(&b, "%%%02X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeLiteral escapes a string for embedding in a SPARQL literal
func escapeLiteral(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
