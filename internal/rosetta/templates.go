package rosetta

import "github.com/ScienceLiveHub/science-live-pipeline/internal/model"

// TextSearchTemplate is the generic fallback template. It is always
// applicable, so generation never comes back empty.
const TextSearchTemplate = "text_search"

// template maps an intent to one structured claim pattern. subjectSlot
// and objectSlot name the frame slots feeding the two positions; an
// unfilled position becomes a free variable named subjectVar/objectVar.
type template struct {
	id          string
	typeURI     string
	label       string
	intent      model.Intent
	nlPattern   string
	specificity float64 // Scales frame confidence; higher = stricter interpretation
	subjectSlot string
	objectSlot  string
	subjectVar  string
	objectVar   string
}

const rosettaNS = "https://w3id.org/rosetta/"

// intentTemplates holds claim templates per intent, strictest first.
var intentTemplates = map[model.Intent][]template{
	model.IntentCitation: {
		{
			id: "cites", typeURI: rosettaNS + "Cites", label: "cites",
			intent: model.IntentCitation, nlPattern: "SUBJECT cites OBJECT",
			specificity: 1.0,
			subjectSlot: "citing_work", objectSlot: "cited_work",
			subjectVar: "citing_work", objectVar: "cited_work",
		},
		{
			id: "mentions", typeURI: rosettaNS + "Mentions", label: "mentions",
			intent: model.IntentCitation, nlPattern: "SUBJECT mentions OBJECT",
			specificity: 0.7,
			subjectSlot: "citing_work", objectSlot: "cited_work",
			subjectVar: "mentioning_work", objectVar: "mentioned_work",
		},
	},
	model.IntentAuthorship: {
		{
			id: "authored_by", typeURI: rosettaNS + "AuthoredBy", label: "authored by",
			intent: model.IntentAuthorship, nlPattern: "SUBJECT was authored by OBJECT",
			specificity: 1.0,
			subjectSlot: "work", objectSlot: "author",
			subjectVar: "work", objectVar: "author",
		},
	},
	model.IntentDefinition: {
		{
			id: "defined_as", typeURI: rosettaNS + "DefinedAs", label: "is defined as",
			intent: model.IntentDefinition, nlPattern: "SUBJECT is defined as OBJECT",
			specificity: 1.0,
			subjectSlot: "term", objectSlot: "",
			subjectVar: "term", objectVar: "definition",
		},
	},
	model.IntentMeasurement: {
		{
			id: "has_measurement", typeURI: rosettaNS + "HasMeasurement", label: "has measurement",
			intent: model.IntentMeasurement, nlPattern: "SUBJECT has measurement OBJECT",
			specificity: 1.0,
			subjectSlot: "subject", objectSlot: "quantity",
			subjectVar: "measured_thing", objectVar: "quantity",
		},
	},
	model.IntentLocation: {
		{
			id: "located_in", typeURI: rosettaNS + "LocatedIn", label: "is located in",
			intent: model.IntentLocation, nlPattern: "SUBJECT is located in OBJECT",
			specificity: 1.0,
			subjectSlot: "subject", objectSlot: "",
			subjectVar: "located_thing", objectVar: "place",
		},
	},
	model.IntentRelation: {
		{
			id: "related_to", typeURI: rosettaNS + "RelatedTo", label: "is related to",
			intent: model.IntentRelation, nlPattern: "SUBJECT is related to OBJECT",
			specificity: 1.0,
			subjectSlot: "subject", objectSlot: "target",
			subjectVar: "subject", objectVar: "related_thing",
		},
	},
}

// textSearchTemplate builds the generic fallback for any intent
func textSearchTemplate(intent model.Intent) template {
	return template{
		id: TextSearchTemplate, typeURI: rosettaNS + "TextMatch", label: "mentions text",
		intent: intent, nlPattern: "SUBJECT mentions OBJECT",
		specificity: 0.4,
		subjectVar: "np", objectVar: "text",
	}
}
