package domain

import "time"

// DefaultGlyphs is the alphabet scrambling positions draw from.
// The duplicated underscore is intentional and doubles its weight.
const DefaultGlyphs = "!<>-_\\/[]{}—=+*^?#_"

const (
	// DefaultStartSpread bounds the frame at which a slot starts scrambling (exclusive).
	DefaultStartSpread = 40

	// DefaultSettleSpread bounds how many frames a slot scrambles before settling (exclusive).
	DefaultSettleSpread = 40

	// DefaultRerollChance is the per-frame probability that a scrambling slot draws a new glyph.
	DefaultRerollChance = 0.28

	// DefaultInitialDelay is the pause before the first automatic advance.
	DefaultInitialDelay = 500 * time.Millisecond

	// DefaultHold is the pause on a settled entry before advancing.
	DefaultHold = 1800 * time.Millisecond

	// DefaultFrameRate is the frame rate used by real-time schedulers.
	DefaultFrameRate = 60
)
