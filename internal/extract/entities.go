package extract

import (
	"sort"
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// EntityExtractor recognizes scientific entities in question text by
// merging spans from an ordered set of taggers. Earlier taggers win
// priority ties during overlap arbitration.
type EntityExtractor struct {
	taggers []Tagger
}

// NewEntityExtractor creates an extractor with the given taggers, or the
// built-in rule taggers when none are supplied.
func NewEntityExtractor(taggers ...Tagger) *EntityExtractor {
	if len(taggers) == 0 {
		taggers = DefaultTaggers()
	}
	return &EntityExtractor{taggers: taggers}
}

type candidate struct {
	span     Span
	priority int // Tagger index; lower wins ties
}

// Extract returns entities in text order. Overlapping spans resolve
// longest-match-wins, then by tagger priority. Empty or unparseable
// input yields an empty result, never an error.
func (e *EntityExtractor) Extract(text string) []model.Entity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []candidate
	for i, tagger := range e.taggers {
		for _, span := range tagger.Tag(text) {
			candidates = append(candidates, candidate{span: span, priority: i})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		li := candidates[i].span.End - candidates[i].span.Start
		lj := candidates[j].span.End - candidates[j].span.Start
		if li != lj {
			return li > lj
		}
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].span.Start < candidates[j].span.Start
	})

	var accepted []Span
	for _, c := range candidates {
		if overlapsAny(c.span, accepted) {
			continue
		}
		accepted = append(accepted, c.span)
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })

	entities := make([]model.Entity, 0, len(accepted))
	for _, s := range accepted {
		value := s.Value
		if value == "" {
			value = s.Text
		}
		entities = append(entities, model.Entity{
			Kind:       s.Kind,
			Text:       s.Text,
			Value:      value,
			Confidence: clamp01(s.Confidence),
			Start:      s.Start,
			End:        s.End,
		})
	}
	return entities
}

func overlapsAny(s Span, accepted []Span) bool {
	for _, a := range accepted {
		if s.Start < a.End && a.Start < s.End {
			return true
		}
	}
	return false
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
