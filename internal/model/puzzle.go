package model

import (
	"fmt"
	"strings"
)

// HintSlot identifies one of the four hint variants a puzzle page can carry
type HintSlot int

const (
	HintFirst HintSlot = iota
	HintSecond
	HintThird
	HintSpecial
)

// HintSlots lists every slot in page order
var HintSlots = [...]HintSlot{HintFirst, HintSecond, HintThird, HintSpecial}

// String returns the slot label used by the wiki template ("1", "2", "3", "Special")
func (s HintSlot) String() string {
	switch s {
	case HintFirst:
		return "1"
	case HintSecond:
		return "2"
	case HintThird:
		return "3"
	case HintSpecial:
		return "Special"
	default:
		return fmt.Sprintf("HintSlot(%d)", int(s))
	}
}

// Column returns the output column name for the slot
func (s HintSlot) Column() string {
	switch s {
	case HintFirst:
		return "first_hint"
	case HintSecond:
		return "second_hint"
	case HintThird:
		return "third_hint"
	case HintSpecial:
		return "special_hint"
	default:
		return ""
	}
}

// ParseHintSlot accepts a template label or a column name
func ParseHintSlot(s string) (HintSlot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "first", "first_hint":
		return HintFirst, nil
	case "2", "second", "second_hint":
		return HintSecond, nil
	case "3", "third", "third_hint":
		return HintThird, nil
	case "special", "special_hint":
		return HintSpecial, nil
	default:
		return 0, fmt.Errorf("unknown hint slot %q", s)
	}
}

// PuzzleRecord is the structured form of one puzzle page.
// Every extracted field is optional; nil means the page did not provide it.
type PuzzleRecord struct {
	DocumentID string `json:"document_id" bson:"_id"` // File name the page was stored under
	URL        string `json:"url" bson:"url"`

	ID                *string `json:"id" bson:"id,omitempty"`                   // Puzzle number as printed, not always numeric
	Category          *string `json:"category" bson:"category,omitempty"`
	Description       *string `json:"description" bson:"description,omitempty"`
	DescriptionMarkup bool    `json:"description_markup,omitempty" bson:"description_markup,omitempty"` // Description is a raw paragraph with an embedded image
	ImagePath         *string `json:"img" bson:"img,omitempty"`
	AnswerImagePath   *string `json:"answer_img,omitempty" bson:"answer_img,omitempty"`
	Picarats          *int    `json:"picarats" bson:"picarats,omitempty"`
	FirstHint         *string `json:"first_hint" bson:"first_hint,omitempty"`
	SecondHint        *string `json:"second_hint" bson:"second_hint,omitempty"`
	ThirdHint         *string `json:"third_hint" bson:"third_hint,omitempty"`
	SpecialHint       *string `json:"special_hint" bson:"special_hint,omitempty"`
	Solution          *string `json:"solution" bson:"solution,omitempty"`
}

// Hint returns the hint stored for a slot
func (r *PuzzleRecord) Hint(slot HintSlot) *string {
	switch slot {
	case HintFirst:
		return r.FirstHint
	case HintSecond:
		return r.SecondHint
	case HintThird:
		return r.ThirdHint
	case HintSpecial:
		return r.SpecialHint
	default:
		return nil
	}
}

// HintPtr returns the address of the field holding a slot's hint
func (r *PuzzleRecord) HintPtr(slot HintSlot) **string {
	switch slot {
	case HintFirst:
		return &r.FirstHint
	case HintSecond:
		return &r.SecondHint
	case HintThird:
		return &r.ThirdHint
	case HintSpecial:
		return &r.SpecialHint
	default:
		return nil
	}
}

// IsEmpty reports whether no field was extracted from the page.
// Attachments and the derived URL do not count.
func (r *PuzzleRecord) IsEmpty() bool {
	if r.ID != nil || r.Category != nil || r.Description != nil || r.Picarats != nil || r.Solution != nil {
		return false
	}
	for _, slot := range HintSlots {
		if r.Hint(slot) != nil {
			return false
		}
	}
	return true
}

// Deref returns the value of an optional string, or "" when absent
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
