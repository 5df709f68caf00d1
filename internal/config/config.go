// Package config loads scramble settings from a file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/persistence/middleware"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. SCRAMBLE_HOLD.
const EnvPrefix = "SCRAMBLE"

// DefaultFile is the config file name searched in the working directory.
const DefaultFile = "scramble.yaml"

// Config holds every setting of a scramble host.
type Config struct {
	Names        []string `mapstructure:"names" yaml:"names"`
	Card         string   `mapstructure:"card" yaml:"card,omitempty"`
	Delay        Duration `mapstructure:"delay" yaml:"delay"`
	Hold         Duration `mapstructure:"hold" yaml:"hold"`
	Glyphs       string   `mapstructure:"glyphs" yaml:"glyphs"`
	RerollChance float64  `mapstructure:"reroll_chance" yaml:"reroll_chance"`
	StartSpread  int      `mapstructure:"start_spread" yaml:"start_spread"`
	SettleSpread int      `mapstructure:"settle_spread" yaml:"settle_spread"`
	FrameRate    int      `mapstructure:"frame_rate" yaml:"frame_rate"`
	Seed         uint64   `mapstructure:"seed" yaml:"seed,omitempty"`
	Markup       string   `mapstructure:"markup" yaml:"markup"`

	// Persistence of the last settled text: Redis wins over Database, which
	// wins over StateDir. All empty disables it.
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	StateDir string `mapstructure:"state_dir" yaml:"state_dir,omitempty"`
	// StateKey is a base64 AES-256 key sealing persisted texts. It is never
	// written back to a config file.
	StateKey string `mapstructure:"state_key" yaml:"-"`

	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds the HTTP control API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// RedisConfig holds the frame broadcast settings. Redis is disabled when Addr is empty.
type RedisConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr,omitempty"`
	DB      int    `mapstructure:"db" yaml:"db,omitempty"`
	Channel string `mapstructure:"channel" yaml:"channel"`
	Key     string `mapstructure:"key" yaml:"key"`
}

// Markup names accepted by Config.Markup.
const (
	MarkupHTML  = "html"
	MarkupPlain = "plain"
	MarkupANSI  = "ansi"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Delay:        Duration(domain.DefaultInitialDelay),
		Hold:         Duration(domain.DefaultHold),
		Glyphs:       domain.DefaultGlyphs,
		RerollChance: domain.DefaultRerollChance,
		StartSpread:  domain.DefaultStartSpread,
		SettleSpread: domain.DefaultSettleSpread,
		FrameRate:    domain.DefaultFrameRate,
		Markup:       MarkupANSI,
		Log:          LogConfig{Level: "info", Format: "text"},
		Server:       ServerConfig{Addr: ":8080"},
		Redis:        RedisConfig{Channel: "scramble:frames", Key: "scramble:text"},
	}
}

// Load resolves the configuration from, in increasing precedence, the
// defaults, the config file, SCRAMBLE_* environment variables and flags.
// An empty path searches DefaultFile in the working directory; a missing
// default file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := Decode(v.AllSettings())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode converts loosely typed settings into a Config on top of the defaults.
func Decode(settings map[string]any) (Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			namesHook,
			durationHook,
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	cfg.Names = cleanNames(cfg.Names)
	return cfg, nil
}

// Validate reports every unusable value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative, got %s", c.Delay))
	}
	if c.Hold < 0 {
		errs = append(errs, fmt.Errorf("hold must not be negative, got %s", c.Hold))
	}
	if c.Glyphs == "" {
		errs = append(errs, errors.New("glyphs must not be empty"))
	}
	if c.RerollChance < 0 || c.RerollChance > 1 {
		errs = append(errs, fmt.Errorf("reroll_chance must be within [0, 1], got %g", c.RerollChance))
	}
	if c.StartSpread <= 0 || c.SettleSpread <= 0 {
		errs = append(errs, fmt.Errorf("spreads must be positive, got %d/%d", c.StartSpread, c.SettleSpread))
	}
	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate))
	}
	if c.StateKey != "" {
		if _, err := middleware.ParseKey(c.StateKey); err != nil {
			errs = append(errs, fmt.Errorf("state_key: %w", err))
		}
	}
	switch c.Markup {
	case MarkupHTML, MarkupPlain, MarkupANSI:
	default:
		errs = append(errs, fmt.Errorf("unknown markup %q", c.Markup))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Options translates the animation settings into library options.
// Markup and sinks depend on the host and are left to the caller.
func (c Config) Options() []scramble.Option {
	opts := []scramble.Option{
		scramble.WithNames(c.Names...),
		scramble.WithInitialDelay(c.Delay.Std()),
		scramble.WithHold(c.Hold.Std()),
		scramble.WithGlyphs(c.Glyphs),
		scramble.WithRerollChance(c.RerollChance),
		scramble.WithSpreads(c.StartSpread, c.SettleSpread),
		scramble.WithFrameRate(c.FrameRate),
	}
	if c.Card != "" {
		opts = append(opts, scramble.WithCard(domain.NewCard(c.Card)))
	}
	if r := c.Random(); r != nil {
		opts = append(opts, scramble.WithRandom(r))
	}
	return opts
}

// EngineOptions translates the engine settings for hosts that drive the
// runtime on their own scheduler.
func (c Config) EngineOptions() []runtime.EngineOption {
	opts := []runtime.EngineOption{
		runtime.WithGlyphs(c.Glyphs),
		runtime.WithRerollChance(c.RerollChance),
		runtime.WithSpreads(c.StartSpread, c.SettleSpread),
	}
	if r := c.Random(); r != nil {
		opts = append(opts, runtime.WithRandom(r))
	}
	return opts
}

// SequencerOptions translates the cycle timing settings.
func (c Config) SequencerOptions() []runtime.SequencerOption {
	return []runtime.SequencerOption{
		runtime.WithInitialDelay(c.Delay.Std()),
		runtime.WithHold(c.Hold.Std()),
	}
}

// Random returns a seeded source, or nil when no seed is configured.
func (c Config) Random() *rand.Rand {
	if c.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(c.Seed, c.Seed))
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// WriteFile writes the configuration as YAML, refusing to overwrite an
// existing file unless force is set.
func (c Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	out, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("names", append([]string{}, d.Names...))
	v.SetDefault("card", d.Card)
	v.SetDefault("delay", d.Delay.Std().String())
	v.SetDefault("hold", d.Hold.Std().String())
	v.SetDefault("glyphs", d.Glyphs)
	v.SetDefault("reroll_chance", d.RerollChance)
	v.SetDefault("start_spread", d.StartSpread)
	v.SetDefault("settle_spread", d.SettleSpread)
	v.SetDefault("frame_rate", d.FrameRate)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("markup", d.Markup)
	v.SetDefault("database", d.Database)
	v.SetDefault("state_dir", d.StateDir)
	v.SetDefault("state_key", d.StateKey)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.channel", d.Redis.Channel)
	v.SetDefault("redis.key", d.Redis.Key)
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"names":      "names",
	"card":       "card",
	"delay":      "delay",
	"hold":       "hold",
	"glyphs":     "glyphs",
	"fps":        "frame_rate",
	"seed":       "seed",
	"markup":     "markup",
	"state-dir":  "state_dir",
	"db":         "database",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
	"redis":      "redis.addr",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
