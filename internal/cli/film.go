package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/internal/presentation/film"
	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/adapters/clock"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/render"
)

// maxCallbacks bounds a recording in case a configuration never idles.
const maxCallbacks = 100_000

// Record plays the configured animation on virtual time and returns the
// timestamped frames. With a text it records a single reveal from the
// first name (or from nothing); otherwise one full automatic cycle.
func Record(cfg config.Config, text string) ([]film.Still, error) {
	v := clock.NewVirtual(clock.WithFrameInterval(time.Second / time.Duration(cfg.FrameRate)))
	timeline := film.NewTimeline(v.Now)

	engineOpts := append(cfg.EngineOptions(),
		runtime.WithMarkup(render.Plain{}),
		runtime.WithFrameSink(timeline),
	)
	engine := runtime.NewEngine(v, engineOpts...)

	if text != "" {
		start := ""
		if len(cfg.Names) > 0 {
			start = cfg.Names[0]
		}
		engine.Show(start)
		engine.SetText(text)
	} else {
		seqOpts := append(cfg.SequencerOptions(), runtime.WithFlipper(domain.NewCard("film")))
		runtime.NewSequencer(engine, v, cfg.Names, seqOpts...).Activate()
	}

	if v.RunUntilIdle(maxCallbacks) == maxCallbacks && v.Pending() > 0 {
		return nil, fmt.Errorf("recording did not finish after %d callbacks", maxCallbacks)
	}
	return timeline.Stills(), nil
}

// WriteFilm records the animation and encodes it as a GIF on w.
func WriteFilm(w io.Writer, cfg config.Config, text string, opts film.Options) ([]film.Still, error) {
	stills, err := Record(cfg, text)
	if err != nil {
		return nil, err
	}
	if err := film.WriteGIF(w, stills, opts); err != nil {
		return nil, err
	}
	return stills, nil
}
