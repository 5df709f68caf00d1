/*
Package domain contains the core models of the scramble engine.

It defines the per-character animation state, the frames produced by the
frame loop, the one-shot completion signal handed back to callers and the
lifecycle hooks used for observability. This package is kept free of I/O and
scheduling concerns; those live behind the ports package.

# Key Entities

  - Slot: one character position's timing window and current scramble glyph.
  - Frame: the rendered output of one tick (plain text, markup and cells).
  - Completion: a one-shot signal that settles when a transition finishes.
  - Card: the companion element whose orientation flips on every advance.
*/
package domain
