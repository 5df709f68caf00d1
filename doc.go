/*
Package scramble renders a "scramble" text-reveal effect and cycles it through a list of names.

Given the text currently displayed and a new target, every character position animates
independently: it keeps its old character for a while, flickers through random glyphs,
and then settles on its new character. Positions start and settle at staggered frames,
so the reveal ripples across the text.

# Concept

The library is split in two cooperating parts:

  - The Engine owns the per-character timing windows and the frame loop. Every call to
    SetText supersedes the transition in flight and returns a Completion that settles
    when the new text is fully displayed.
  - The Sequencer drives a list of names through the Engine. After an initial delay it
    transitions to each following name, holding on each one, loops back to the first
    name once and rests there. A companion Card is flipped before every transition.

Both run on a single event loop, so frames, timers and external calls never race.
Rendered frames are delivered to FrameSinks (terminal, HTTP event stream, Redis, GIF).

# Usage

	s, err := scramble.New(
		scramble.WithNames("Ada", "Grace", "Edsger"),
		scramble.WithFrameSink(ports.FrameSinkFunc(func(f domain.Frame) {
			fmt.Print("\r" + f.Text)
		})),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer s.Stop()

	c, _ := s.SetText(ctx, "Hello")
	_ = c.Wait(ctx)

For deterministic output inject a seeded source with WithRandom.
*/
package scramble
