package extract

import "strings"

// ValueKind says which form a Value holds
type ValueKind int

const (
	ValueAbsent    ValueKind = iota // Field not present on the page
	ValueText                       // Plain text
	ValueFragments                  // Raw markup fragments
)

// Value is the result of one field extractor
type Value struct {
	Kind      ValueKind
	Text      string
	Fragments []string
}

// Absent returns the empty result
func Absent() Value {
	return Value{}
}

// Text returns a plain text result
func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// Fragments returns a markup result
func Fragments(fragments ...string) Value {
	return Value{Kind: ValueFragments, Fragments: fragments}
}

// IsAbsent reports whether the field was not found
func (v Value) IsAbsent() bool {
	return v.Kind == ValueAbsent
}

// String flattens the value. Fragments are joined with newlines.
func (v Value) String() string {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueFragments:
		return strings.Join(v.Fragments, "\n")
	default:
		return ""
	}
}
