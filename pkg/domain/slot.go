package domain

// Slot is one character position's independent animation state during a transition.
type Slot struct {
	// From is the character shown before scrambling starts, empty if the slot is appearing.
	From string `json:"from"`

	// To is the character the slot settles on, empty if the slot is disappearing.
	To string `json:"to"`

	// Start is the frame at which scrambling begins.
	Start int `json:"start"`

	// End is the frame at which the slot settles. End >= Start.
	End int `json:"end"`

	// Glyph is the scramble glyph currently shown. Empty until first drawn.
	Glyph string `json:"glyph,omitempty"`
}

// StateAt reports how the slot renders at the given frame.
func (s Slot) StateAt(frame int) CellState {
	switch {
	case frame >= s.End:
		return CellSettled
	case frame >= s.Start:
		return CellScrambling
	default:
		return CellUntouched
	}
}
