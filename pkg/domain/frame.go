package domain

// CellState is the phase a slot is in for a given frame.
type CellState string

const (
	CellUntouched  CellState = "untouched"  // Still showing the old character
	CellScrambling CellState = "scrambling" // Showing a random glyph
	CellSettled    CellState = "settled"    // Showing the new character
)

// Cell is the rendered content of one slot in a frame.
type Cell struct {
	Char  string    `json:"char"`
	State CellState `json:"state"`
}

// Frame is the output of a single tick of the frame loop.
type Frame struct {
	// Session identifies the transition that produced the frame.
	Session string `json:"session"`

	// Index is the frame counter, starting at 0 for every transition.
	Index int `json:"index"`

	// Text is the plain concatenation of all rendered characters.
	Text string `json:"text"`

	// Markup is Text with scrambling glyphs decorated for display.
	Markup string `json:"markup"`

	Cells   []Cell `json:"cells"`
	Settled int    `json:"settled"`
	Total   int    `json:"total"`
}

// Complete reports whether every slot has settled.
func (f Frame) Complete() bool {
	return f.Settled == f.Total
}

// Snapshot is a point-in-time view of the displayed text and sequence position.
type Snapshot struct {
	Text        string      `json:"text"`
	Markup      string      `json:"markup"`
	Session     string      `json:"session,omitempty"`
	Animating   bool        `json:"animating"`
	Index       int         `json:"index"`
	Names       []string    `json:"names"`
	Orientation Orientation `json:"orientation"`
}
