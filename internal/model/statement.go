package model

// Term is one position of a Rosetta statement: either a bound entity
// or a free variable to be solved by query execution.
type Term struct {
	Var    string  `json:"var,omitempty"`    // Variable name when free
	Entity *Entity `json:"entity,omitempty"` // Bound entity when not free
}

// BoundTerm creates a term bound to an entity
func BoundTerm(e Entity) Term {
	return Term{Entity: &e}
}

// VarTerm creates a free variable term
func VarTerm(name string) Term {
	return Term{Var: name}
}

// IsBound reports whether the term carries a bound entity
func (t Term) IsBound() bool {
	return t.Entity != nil
}

// RosettaStatement is a structured claim pattern bridging an intent frame
// and a query template. Multiple statements per frame are disjunctive
// candidates, each independently translatable.
type RosettaStatement struct {
	Template   string  `json:"template"`   // Template identifier, e.g. "cites"
	TypeURI    string  `json:"type_uri"`   // Statement type IRI in the Rosetta vocabulary
	Label      string  `json:"label"`      // Human predicate label, e.g. "cites"
	Intent     Intent  `json:"intent"`     // Intent that produced this statement
	Subject    Term    `json:"subject"`
	Object     Term    `json:"object"`
	NLPattern  string  `json:"nl_pattern"` // "SUBJECT cites OBJECT" rendering pattern
	Confidence float64 `json:"confidence"` // How specific this interpretation is, in [0,1]
}

// Describe renders the statement as natural language using its pattern,
// substituting bound entity labels and eliding free positions.
func (s RosettaStatement) Describe() string {
	return describePattern(s.NLPattern, s.Subject, s.Object)
}

// CompiledQuery is an executable query derived from exactly one statement
type CompiledQuery struct {
	Query     string           `json:"query"`
	Language  string           `json:"language"`           // Always "sparql" for now
	Statement RosettaStatement `json:"statement"`          // Originating statement
	Endpoint  string           `json:"endpoint,omitempty"` // Target endpoint name, "" means default/fan-out
	Limit     int              `json:"limit"`
}
