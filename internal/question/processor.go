package question

import (
	"regexp"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/extract"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Processor classifies question intent and binds extracted entities into
// an intent frame. The intent set is closed; Unknown is a valid terminal
// outcome, never an error.
type Processor struct {
	extractor *extract.EntityExtractor
	patterns  map[model.Intent][]intentPattern
}

// NewProcessor creates a processor using the given entity extractor
func NewProcessor(extractor *extract.EntityExtractor) *Processor {
	return &Processor{
		extractor: extractor,
		patterns:  compileIntentPatterns(),
	}
}

// intentPattern weights a keyword pattern. Generic question openers
// carry weight 1 so a concrete domain keyword always outranks them.
type intentPattern struct {
	re     *regexp.Regexp
	weight int
}

func compileIntentPatterns() map[model.Intent][]intentPattern {
	type spec struct {
		expr   string
		weight int
	}
	raw := map[model.Intent][]spec{
		model.IntentCitation: {
			{`\bcit(?:es?|ed|ing|ation)\b`, 2}, {`\breferenc(?:es?|ed)\b`, 2}, {`\bmention(?:s|ed)?\b`, 2},
		},
		model.IntentAuthorship: {
			{`\bauthor(?:s|ed)?\b`, 2}, {`\bwritten\s+by\b`, 2}, {`\bwrote\b`, 2},
			{`\bpapers?\s+by\b`, 2}, {`\bworks?\s+by\b`, 2}, {`\bcreated\s+by\b`, 2}, {`\bwho\s+wrote\b`, 2},
		},
		model.IntentDefinition: {
			{`\bwhat\s+is\b`, 1}, {`\bdefin(?:es?|ed|ition)\b`, 2}, {`\bmeaning\s+of\b`, 2}, {`\bexplain\b`, 2},
		},
		model.IntentMeasurement: {
			{`\bmass\b`, 2}, {`\bweight\b`, 2}, {`\btemperature\b`, 2}, {`\bmeasure(?:s|d|ment)?\b`, 2},
			{`\bhow\s+(?:much|heavy|large)\b`, 2}, {`\bvalue\s+of\b`, 2},
		},
		model.IntentLocation: {
			{`\bwhere\b`, 2}, {`\blocat(?:ed|ion)\b`, 2}, {`\bsituated\b`, 2},
		},
		model.IntentRelation: {
			{`\brelat(?:es?|ed|ion)\b`, 2}, {`\babout\b`, 1}, {`\bconcern(?:s|ing)?\b`, 2},
			{`\bconnect(?:s|ed|ion)?\b`, 2}, {`\bassociated\b`, 2},
		},
	}
	compiled := make(map[model.Intent][]intentPattern, len(raw))
	for intent, specs := range raw {
		for _, s := range specs {
			compiled[intent] = append(compiled[intent], intentPattern{re: regexp.MustCompile(s.expr), weight: s.weight})
		}
	}
	return compiled
}

// slotSpec names a template slot and the entity kinds it accepts, most
// compatible first.
type slotSpec struct {
	name  string
	kinds []model.EntityKind
}

var intentSlots = map[model.Intent][]slotSpec{
	model.IntentCitation: {
		{"cited_work", []model.EntityKind{model.EntityIdentifier, model.EntityTitle, model.EntityConcept}},
	},
	model.IntentAuthorship: {
		{"author", []model.EntityKind{model.EntityIdentifier, model.EntityAuthor}},
		{"work", []model.EntityKind{model.EntityTitle, model.EntityConcept}},
	},
	model.IntentDefinition: {
		{"term", []model.EntityKind{model.EntityConcept, model.EntityTitle, model.EntityIdentifier}},
	},
	model.IntentMeasurement: {
		{"subject", []model.EntityKind{model.EntityConcept, model.EntityTitle, model.EntityIdentifier}},
		{"quantity", []model.EntityKind{model.EntityMeasurement}},
	},
	model.IntentLocation: {
		{"subject", []model.EntityKind{model.EntityInstitution, model.EntityConcept, model.EntityAuthor, model.EntityIdentifier}},
	},
	model.IntentRelation: {
		{"subject", []model.EntityKind{model.EntityConcept, model.EntityTitle, model.EntityIdentifier, model.EntityAuthor}},
		{"target", []model.EntityKind{model.EntityConcept, model.EntityTitle, model.EntityIdentifier}},
	},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	terminalRe   = regexp.MustCompile(`[?!.]+$`)
	punctOnlyRe  = regexp.MustCompile(`^[?!.\s]*$`)
	wordRe       = regexp.MustCompile(`\b\w+\b`)
)

// Normalize collapses whitespace and normalizes terminal punctuation.
// Punctuation-only input normalizes to the empty string.
func Normalize(raw string) model.Question {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	cleaned = terminalRe.ReplaceAllString(cleaned, "?")
	if punctOnlyRe.MatchString(cleaned) {
		cleaned = ""
	}
	return model.Question{Raw: raw, Normalized: cleaned, Language: "en"}
}

// Process builds an intent frame from raw question text. Empty or
// unparseable input falls through to the Unknown intent.
func (p *Processor) Process(raw string) model.IntentFrame {
	q := Normalize(raw)
	entities := p.extractor.Extract(q.Normalized)
	keyPhrases := extractKeyPhrases(q.Normalized)

	// Without recognizable entities there is nothing to anchor an intent
	// template to; the frame stays Unknown and downstream falls back to
	// generic text search over the key phrases.
	if len(entities) == 0 {
		return model.IntentFrame{
			Question:   q,
			Intent:     model.IntentUnknown,
			Confidence: 0,
			KeyPhrases: keyPhrases,
		}
	}

	intent, confidence := p.classify(q.Normalized)
	slots, residual := bindSlots(intent, entities)

	return model.IntentFrame{
		Question:   q,
		Intent:     intent,
		Confidence: confidence,
		Slots:      slots,
		Residual:   residual,
		KeyPhrases: keyPhrases,
	}
}

// classify scores every intent's patterns against the normalized text
// and returns the winner with a confidence derived from score dominance.
func (p *Processor) classify(text string) (model.Intent, float64) {
	lower := strings.ToLower(text)

	scores := make(map[model.Intent]int)
	for intent, patterns := range p.patterns {
		for _, pat := range patterns {
			scores[intent] += pat.weight * len(pat.re.FindAllString(lower, -1))
		}
	}

	best := model.IntentUnknown
	bestScore, total := 0, 0
	for _, intent := range []model.Intent{
		model.IntentCitation, model.IntentAuthorship, model.IntentDefinition,
		model.IntentMeasurement, model.IntentLocation, model.IntentRelation,
	} {
		s := scores[intent]
		total += s
		if s > bestScore {
			best, bestScore = intent, s
		}
	}
	if bestScore == 0 {
		return model.IntentUnknown, 0.3
	}

	confidence := float64(bestScore) / float64(total)
	if bestScore >= 4 {
		confidence = min(confidence*1.2, 1.0)
	} else if bestScore <= 2 {
		confidence = max(confidence*0.8, 0.3)
	}
	return best, confidence
}

// bindSlots assigns each template slot the highest-confidence unused
// entity of a compatible kind, scanning kinds most-compatible-first.
// Entities left over are retained as residual context.
func bindSlots(intent model.Intent, entities []model.Entity) ([]model.BoundSlot, []model.Entity) {
	specs := intentSlots[intent]
	used := make([]bool, len(entities))
	var slots []model.BoundSlot

	for _, spec := range specs {
		for _, kind := range spec.kinds {
			bestIdx, bestConf := -1, 0.0
			for i, e := range entities {
				if used[i] || e.Kind != kind {
					continue
				}
				if e.Confidence > bestConf {
					bestIdx, bestConf = i, e.Confidence
				}
			}
			if bestIdx >= 0 {
				slots = append(slots, model.BoundSlot{Name: spec.name, Entity: entities[bestIdx]})
				used[bestIdx] = true
				break
			}
		}
	}

	var residual []model.Entity
	for i, e := range entities {
		if !used[i] {
			residual = append(residual, e)
		}
	}
	return slots, residual
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "must": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "by": {}, "for": {}, "with": {}, "to": {},
	"from": {}, "about": {}, "what": {}, "who": {}, "where": {}, "when": {},
	"how": {}, "why": {}, "which": {},
}

// extractKeyPhrases returns significant words in text order, deduplicated
func extractKeyPhrases(text string) []string {
	seen := make(map[string]struct{})
	var phrases []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		phrases = append(phrases, w)
	}
	if len(phrases) > 10 {
		phrases = phrases[:10]
	}
	return phrases
}
