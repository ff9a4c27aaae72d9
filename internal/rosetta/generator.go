// Package rosetta turns classified question frames into structured
// claim statements ready for query translation.
package rosetta

import (
	"strings"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

// Generator maps intent frames onto claim templates.
type Generator struct {
	templates map[model.Intent][]template
}

func NewGenerator() *Generator {
	return &Generator{templates: intentTemplates}
}

// Generate produces candidate statements for the frame, most specific
// first. A generic text-search statement is always appended so every
// frame yields at least one statement, including unknown intents.
func (g *Generator) Generate(frame *model.IntentFrame) []model.RosettaStatement {
	var out []model.RosettaStatement
	for _, tpl := range g.templates[frame.Intent] {
		out = append(out, g.instantiate(tpl, frame))
	}
	out = append(out, g.textSearch(frame))
	return out
}

func (g *Generator) instantiate(tpl template, frame *model.IntentFrame) model.RosettaStatement {
	subject := model.VarTerm(tpl.subjectVar)
	if tpl.subjectSlot != "" {
		if e, ok := frame.Slot(tpl.subjectSlot); ok {
			subject = model.BoundTerm(e)
		}
	}
	object := model.VarTerm(tpl.objectVar)
	if tpl.objectSlot != "" {
		if e, ok := frame.Slot(tpl.objectSlot); ok {
			object = model.BoundTerm(e)
		}
	}
	return model.RosettaStatement{
		Template:   tpl.id,
		TypeURI:    tpl.typeURI,
		Label:      tpl.label,
		Intent:     tpl.intent,
		Subject:    subject,
		Object:     object,
		NLPattern:  tpl.nlPattern,
		Confidence: clamp01(frame.Confidence * tpl.specificity * extractionConfidence(subject, object)),
	}
}

// extractionConfidence averages the extraction confidence of the bound
// terms, so a statement anchored on an exact identifier outranks the
// same statement anchored on a weak lexical match. Statements with
// only free positions keep a neutral factor of 1.
func extractionConfidence(terms ...model.Term) float64 {
	sum, bound := 0.0, 0
	for _, t := range terms {
		if t.IsBound() {
			sum += t.Entity.Confidence
			bound++
		}
	}
	if bound == 0 {
		return 1
	}
	return sum / float64(bound)
}

// textSearch builds the fallback statement. Its object is a synthetic
// concept entity carrying the question's key phrases, or the first
// bound entity's label when no phrases survived normalization.
func (g *Generator) textSearch(frame *model.IntentFrame) model.RosettaStatement {
	tpl := textSearchTemplate(frame.Intent)
	text := strings.Join(frame.KeyPhrases, " ")
	conf := 0.5
	if text == "" {
		if ents := frame.Entities(); len(ents) > 0 {
			text = ents[0].Label()
			conf = ents[0].Confidence
		} else {
			text = frame.Question.Normalized
		}
	}
	object := model.BoundTerm(model.Entity{
		Kind:       model.EntityConcept,
		Text:       text,
		Value:      text,
		Confidence: conf,
	})
	stmt := g.instantiate(tpl, frame)
	stmt.Object = object
	if stmt.Confidence < tpl.specificity*0.5 {
		stmt.Confidence = tpl.specificity * 0.5
	}
	return stmt
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
