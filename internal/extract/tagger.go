package extract

import (
	"regexp"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Span is a typed region of text produced by a tagging capability.
// External NLP backends (entity taggers, lexicon lookups) implement
// Tagger and return spans; the extractor merges and arbitrates them.
type Span struct {
	Kind       model.EntityKind
	Text       string  // Surface text
	Value      string  // Normalized value; empty means same as Text
	Confidence float64 // In [0,1]
	Start      int     // Byte offset
	End        int
}

// Tagger recognizes typed spans in question text.
// Implementations must be deterministic for identical input.
type Tagger interface {
	Tag(text string) []Span
}

var (
	doiPattern     = regexp.MustCompile(`10\.\d{4,9}/[^\s"']+`)
	orcidPattern   = regexp.MustCompile(`\b\d{4}-\d{4}-\d{4}-\d{3}[\dX]\b`)
	urlPattern     = regexp.MustCompile(`https?://[^\s"']+`)
	quotedPattern  = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	measurePattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s?(kg|g|mg|km|cm|mm|nm|m|s|ms|Hz|kHz|MHz|K|mol|Da|kDa|eV|Pa|°C|%)\b`)
	properPattern  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	termPattern    = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]*(?:[-_][A-Za-z0-9]+)*\b`)
)

// trailingPunct strips sentence punctuation that regexes drag in when an
// identifier ends a question ("...cite 10.1038/nature12373?").
func trailingPunct(s string) string {
	return strings.TrimRight(s, "?!.,;:")
}

// IdentifierTagger recognizes DOIs, ORCIDs, and URLs. Exact identifier
// matches carry confidence 1.0 and canonical URI normalization.
type IdentifierTagger struct{}

func (IdentifierTagger) Tag(text string) []Span {
	var spans []Span
	for _, m := range orcidPattern.FindAllStringIndex(text, -1) {
		id := text[m[0]:m[1]]
		spans = append(spans, Span{
			Kind:       model.EntityIdentifier,
			Text:       id,
			Value:      "https://orcid.org/" + id,
			Confidence: 1.0,
			Start:      m[0],
			End:        m[1],
		})
	}
	for _, m := range doiPattern.FindAllStringIndex(text, -1) {
		doi := trailingPunct(text[m[0]:m[1]])
		if doi == "" {
			continue
		}
		spans = append(spans, Span{
			Kind:       model.EntityIdentifier,
			Text:       doi,
			Value:      "https://doi.org/" + doi,
			Confidence: 1.0,
			Start:      m[0],
			End:        m[0] + len(doi),
		})
	}
	for _, m := range urlPattern.FindAllStringIndex(text, -1) {
		u := trailingPunct(text[m[0]:m[1]])
		if u == "" {
			continue
		}
		spans = append(spans, Span{
			Kind:       model.EntityIdentifier,
			Text:       u,
			Value:      u,
			Confidence: 0.9,
			Start:      m[0],
			End:        m[0] + len(u),
		})
	}
	return spans
}

// institutionMarkers are suffix words that flag an organization name
var institutionMarkers = []string{
	"University", "Institute", "Laboratory", "Lab", "Center", "Centre",
	"Foundation", "Society", "Academy", "Observatory",
}

// NameTagger recognizes quoted titles, person names, institutions, and
// measurements through surface patterns.
type NameTagger struct{}

func (NameTagger) Tag(text string) []Span {
	var spans []Span
	for _, m := range quotedPattern.FindAllStringSubmatchIndex(text, -1) {
		// Group 1 for double quotes, group 2 for single quotes
		start, end := m[2], m[3]
		if start < 0 {
			start, end = m[4], m[5]
		}
		if start < 0 || end <= start {
			continue
		}
		spans = append(spans, Span{
			Kind:       model.EntityTitle,
			Text:       text[start:end],
			Confidence: 0.8,
			Start:      start,
			End:        end,
		})
	}
	for _, m := range measurePattern.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, Span{
			Kind:       model.EntityMeasurement,
			Text:       text[m[0]:m[1]],
			Value:      text[m[2]:m[3]] + " " + text[m[4]:m[5]],
			Confidence: 0.85,
			Start:      m[0],
			End:        m[1],
		})
	}
	for _, m := range properPattern.FindAllStringIndex(text, -1) {
		phrase := text[m[0]:m[1]]
		words := strings.Fields(phrase)
		if len(words) > 4 || isQuestionOpener(words[0]) {
			continue
		}
		kind := model.EntityAuthor
		conf := 0.7
		for _, marker := range institutionMarkers {
			if words[len(words)-1] == marker {
				kind = model.EntityInstitution
				conf = 0.75
				break
			}
		}
		spans = append(spans, Span{
			Kind:       kind,
			Text:       phrase,
			Confidence: conf,
			Start:      m[0],
			End:        m[1],
		})
	}
	return spans
}

// LexicalTagger recognizes technical concepts: mixed-case or digit-bearing
// terms that survive the common-word filter. Confidence stays below the
// identifier and named-entity tiers.
type LexicalTagger struct{}

func (LexicalTagger) Tag(text string) []Span {
	var spans []Span
	for _, m := range termPattern.FindAllStringIndex(text, -1) {
		term := text[m[0]:m[1]]
		if isCommonWord(term) {
			continue
		}
		conf := conceptConfidence(term)
		if conf < 0.5 {
			continue
		}
		spans = append(spans, Span{
			Kind:       model.EntityConcept,
			Text:       term,
			Confidence: conf,
			Start:      m[0],
			End:        m[1],
		})
	}
	return spans
}

// conceptConfidence scores how likely a term is a technical concept
func conceptConfidence(term string) float64 {
	conf := 0.5
	for _, r := range term[1:] {
		if r >= 'A' && r <= 'Z' {
			conf += 0.2
			break
		}
	}
	for _, r := range term {
		if r >= '0' && r <= '9' {
			conf += 0.15
			break
		}
	}
	if len(term) >= 6 {
		conf += 0.05
	}
	if conf > 0.9 {
		conf = 0.9
	}
	return conf
}

var commonWords = map[string]struct{}{
	"what": {}, "who": {}, "where": {}, "when": {}, "how": {}, "why": {},
	"which": {}, "whose": {}, "whom": {}, "the": {}, "and": {}, "or": {},
	"but": {}, "is": {}, "are": {}, "was": {}, "were": {}, "does": {},
	"did": {}, "do": {}, "by": {}, "of": {}, "in": {}, "on": {}, "about": {},
	"papers": {}, "paper": {}, "research": {}, "study": {}, "work": {},
	"works": {}, "data": {}, "results": {}, "cite": {}, "cites": {},
	"cited": {}, "authored": {}, "written": {}, "published": {},
	"define": {}, "definition": {}, "located": {}, "location": {},
	"related": {}, "measurement": {}, "show": {}, "list": {}, "find": {},
	"all": {}, "many": {},
}

func isCommonWord(term string) bool {
	if len(term) < 3 {
		return true
	}
	_, ok := commonWords[strings.ToLower(term)]
	return ok
}

func isQuestionOpener(word string) bool {
	switch word {
	case "What", "Who", "Where", "When", "How", "Why", "Which", "Whose",
		"The", "This", "That", "These", "Those", "Show", "List", "Find":
		return true
	}
	return false
}

// DefaultTaggers returns the built-in rule taggers in arbitration
// priority order: identifier patterns, then named-entity patterns,
// then lexical lookups.
func DefaultTaggers() []Tagger {
	return []Tagger{IdentifierTagger{}, NameTagger{}, LexicalTagger{}}
}
