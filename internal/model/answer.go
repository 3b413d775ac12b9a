package model

// OutputKind is what a riddle expects as an answer
type OutputKind string

const (
	OutputAction OutputKind = "action" // Answer is something to do (draw, move, select)
	OutputText   OutputKind = "text"   // Answer is a word, number or phrase
)

// Valid reports whether k is one of the known kinds
func (k OutputKind) Valid() bool {
	return k == OutputAction || k == OutputText
}

// InputClassification describes what a riddle needs in order to be attempted
type InputClassification struct {
	IsTextSufficient bool       `json:"is_text_sufficient"` // Description alone is enough
	NeedsVisual      bool       `json:"needs_visual"`       // Puzzle image must be shown
	OutputKind       OutputKind `json:"output_kind"`
}

// StructuredAnswer is a set of distinct short answers derived from a solution text
type StructuredAnswer struct {
	Structured []string `json:"structured"`
}

// StructuredRecord is one line of the structure command output
type StructuredRecord struct {
	DocumentID     string               `json:"document_id"`
	Task           string               `json:"task"`
	Model          string               `json:"model"`
	Classification *InputClassification `json:"classification,omitempty"`
	Answer         *StructuredAnswer    `json:"answer,omitempty"`
	Error          string               `json:"error,omitempty"`
}
