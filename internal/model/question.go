package model

import "strings"

// Question is the immutable input to a pipeline run
type Question struct {
	Raw        string `json:"raw"`                // Text exactly as the user typed it
	Normalized string `json:"normalized"`         // Whitespace-collapsed, punctuation-normalized form
	Language   string `json:"language,omitempty"` // Detected language code (best effort)
}

// EntityKind classifies an extracted entity
type EntityKind string

const (
	EntityIdentifier  EntityKind = "identifier"  // DOI, ORCID, URL
	EntityAuthor      EntityKind = "author"      // Person name
	EntityTitle       EntityKind = "title"       // Quoted work title
	EntityConcept     EntityKind = "concept"     // Scientific concept or term
	EntityMeasurement EntityKind = "measurement" // Number with optional unit
	EntityInstitution EntityKind = "institution" // Organization name
	EntityUnknown     EntityKind = "unknown"
)

// Entity is a typed span recognized in the question text
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Text       string     `json:"text"`       // Surface text as it appeared
	Value      string     `json:"value"`      // Normalized value (canonical URI for identifiers)
	Confidence float64    `json:"confidence"` // Extractor certainty in [0,1]
	Start      int        `json:"start"`      // Byte offset of span start
	End        int        `json:"end"`        // Byte offset one past span end
}

// IsIRI reports whether the normalized value is a dereferenceable IRI
func (e Entity) IsIRI() bool {
	return strings.HasPrefix(e.Value, "http://") || strings.HasPrefix(e.Value, "https://")
}

// Label returns the best human-readable form of the entity
func (e Entity) Label() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Value
}

// Intent is the classified purpose of a question, from a closed set
type Intent string

const (
	IntentCitation    Intent = "citation"
	IntentAuthorship  Intent = "authorship"
	IntentDefinition  Intent = "definition"
	IntentMeasurement Intent = "measurement"
	IntentLocation    Intent = "location"
	IntentRelation    Intent = "relation"
	IntentUnknown     Intent = "unknown"
)

// BoundSlot attaches an entity to a named slot of an intent template
type BoundSlot struct {
	Name   string `json:"name"`
	Entity Entity `json:"entity"`
}

// IntentFrame is a classified question with entities bound into slots.
// Created by the question processor and never mutated downstream.
type IntentFrame struct {
	Question   Question    `json:"question"`
	Intent     Intent      `json:"intent"`
	Confidence float64     `json:"confidence"`            // Classification confidence in [0,1]
	Slots      []BoundSlot `json:"slots"`                 // Entities bound to template slots, in slot order
	Residual   []Entity    `json:"residual,omitempty"`    // Recognized entities with no compatible slot
	KeyPhrases []string    `json:"key_phrases,omitempty"` // Free-text terms for the text-search fallback
}

// Slot returns the entity bound to the named slot, if any
func (f IntentFrame) Slot(name string) (Entity, bool) {
	for _, s := range f.Slots {
		if s.Name == name {
			return s.Entity, true
		}
	}
	return Entity{}, false
}

// Entities returns all bound and residual entities in extraction order
func (f IntentFrame) Entities() []Entity {
	out := make([]Entity, 0, len(f.Slots)+len(f.Residual))
	for _, s := range f.Slots {
		out = append(out, s.Entity)
	}
	out = append(out, f.Residual...)
	return out
}
