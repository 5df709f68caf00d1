/*
Package ports defines the driven ports (interfaces) for the scramble engine.

These interfaces decouple the animation core from the host: who ticks the
frames, where rendered frames go and what reacts to a flip.

# Key Interfaces

  - Scheduler: per-frame callbacks and one-shot timers, cancellable by token.
  - FrameSink: receives every rendered frame (terminal, HTTP stream, Redis, GIF).
  - Flipper: the companion element toggled once per advance.
  - Random: the randomness source for timing windows and glyphs.
  - TextStore: persists the last settled text (memory, file, SQLite, Redis).
*/
package ports
