package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/scramble/internal/adapters/file"
	"github.com/aretw0/scramble/internal/adapters/sqlite"
	"github.com/aretw0/scramble/internal/config"
	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/internal/presentation/film"
	"github.com/aretw0/scramble/pkg/adapters/redis"
	"github.com/aretw0/scramble/pkg/domain"
)

func fastConfig(names ...string) config.Config {
	cfg := config.Default()
	cfg.Names = names
	cfg.Delay = config.Duration(time.Millisecond)
	cfg.Hold = config.Duration(time.Millisecond)
	cfg.FrameRate = 1000
	cfg.StartSpread = 3
	cfg.SettleSpread = 3
	cfg.Seed = 7
	cfg.Markup = config.MarkupPlain
	return cfg
}

func TestRun_Text(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, fastConfig("Yo"), RunOptions{Output: &out, Logger: logging.NewNop(), Text: "Hi"})

	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "run should finish before the deadline")
	assert.Equal(t, "Yo\nHi\n", out.String())
}

func TestRun_Once(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, fastConfig("Ada", "Grace"), RunOptions{Output: &out, Logger: logging.NewNop(), Once: true})

	require.NoError(t, err)
	require.NoError(t, ctx.Err())
	assert.Equal(t, "Ada\nGrace\nAda\n", out.String())
}

func TestRun_OnceSingleName(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Run(ctx, fastConfig("Solo"), RunOptions{Output: &out, Logger: logging.NewNop(), Once: true}))
	assert.Equal(t, "Solo\n", out.String())
}

func TestRun_PersistsToStateDir(t *testing.T) {
	cfg := fastConfig("Yo")
	cfg.StateDir = t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Run(ctx, cfg, RunOptions{Output: &bytes.Buffer{}, Logger: logging.NewNop(), Text: "Saved"}))

	text, err := file.New(cfg.StateDir).LoadText(context.Background(), "current")
	require.NoError(t, err)
	assert.Equal(t, "Saved", text)
}

func TestOpenStore(t *testing.T) {
	none, err := OpenStore(config.Default())
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Nil(t, none.Option())
	assert.NoError(t, none.Close())

	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	s, err := OpenStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, s.TextStore)
	assert.Equal(t, "current", s.Key)

	cfg.Database = filepath.Join(t.TempDir(), "scramble.db")
	s, err = OpenStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, s.TextStore)
	assert.NoError(t, s.Close())

	cfg.Redis.Addr = "127.0.0.1:0"
	s, err = OpenStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, s.TextStore)
	assert.Equal(t, cfg.Redis.Key, s.Key)
	_, ok := storeRedis(s)
	assert.True(t, ok)
	assert.NoError(t, s.Close())
}

func TestOpenStore_Encrypted(t *testing.T) {
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.StateKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	s, err := OpenStore(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.SaveText(ctx, s.Key, "Ada"))

	raw, err := file.New(cfg.StateDir).LoadText(ctx, s.Key)
	require.NoError(t, err)
	assert.NotContains(t, raw, "Ada")

	text, err := s.LoadText(ctx, s.Key)
	require.NoError(t, err)
	assert.Equal(t, "Ada", text)

	cfg.StateKey = "bad"
	_, err = OpenStore(cfg)
	assert.Error(t, err)
}

func TestRun_PersistsToDatabase(t *testing.T) {
	cfg := fastConfig("Yo")
	cfg.Database = filepath.Join(t.TempDir(), "scramble.db")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Run(ctx, cfg, RunOptions{Output: &bytes.Buffer{}, Logger: logging.NewNop(), Text: "Kept"}))

	db, err := sqlite.Open(cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	history, err := db.History(context.Background(), "current", 10)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "Kept", history[0].Text)
}

func TestOnceHooks(t *testing.T) {
	calls := 0
	hooks := onceHooks(func() { calls++ })

	hooks.OnAdvance(&domain.AdvanceEvent{Index: 1})
	hooks.OnTransitionSettle(&domain.TransitionEvent{})
	assert.Zero(t, calls)

	hooks.OnAdvance(&domain.AdvanceEvent{Index: 0, Wrap: true})
	hooks.OnTransitionSettle(&domain.TransitionEvent{})
	assert.Equal(t, 1, calls)
}

func TestRecord_Cycle(t *testing.T) {
	stills, err := Record(fastConfig("Ada", "Grace"), "")
	require.NoError(t, err)
	require.NotEmpty(t, stills)

	assert.Equal(t, "Ada", stills[0].Frame.Text)
	assert.Zero(t, stills[0].At)
	last := stills[len(stills)-1]
	assert.Equal(t, "Ada", last.Frame.Text)
	assert.True(t, last.Frame.Complete())

	var sawGrace bool
	for i, s := range stills {
		if i > 0 {
			assert.GreaterOrEqual(t, s.At, stills[i-1].At)
		}
		if s.Frame.Complete() && s.Frame.Text == "Grace" {
			sawGrace = true
		}
	}
	assert.True(t, sawGrace)
}

func TestRecord_Text(t *testing.T) {
	stills, err := Record(fastConfig("Ada"), "Hopper")
	require.NoError(t, err)

	assert.Equal(t, "Ada", stills[0].Frame.Text)
	assert.Equal(t, "Hopper", stills[len(stills)-1].Frame.Text)
}

func TestWriteFilm(t *testing.T) {
	var buf bytes.Buffer
	stills, err := WriteFilm(&buf, fastConfig("Ada"), "Grace", film.DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, stills)
	assert.Equal(t, "GIF89a", buf.String()[:6])
}

func TestDescribe(t *testing.T) {
	cfg := config.Default()
	cfg.Names = []string{"Ada", "Grace"}
	cfg.Card = "hero"

	md := Describe(cfg)

	assert.Contains(t, md, "1. Ada\n2. Grace\n")
	assert.Contains(t, md, "| Hold | 1.8s |")
	assert.Contains(t, md, "| Longest reveal | 79 frames |")
	assert.Contains(t, md, "(19 glyphs, reroll chance 0.28)")
	assert.Contains(t, md, "Companion card `hero`")
	assert.Contains(t, md, "```mermaid\ngraph TD\n")
	assert.Contains(t, md, "name_0 -- \"delay 500ms\" --> name_1")

	assert.Contains(t, Describe(config.Default()), "None configured")
}
