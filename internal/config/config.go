// Package config loads the settings of the mold command from a YAML file
// and MOLD_* environment variables.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/mold/pkg/serialize"
)

// Config is the runtime configuration.
type Config struct {
	Locale     string `mapstructure:"locale"`
	Indented   bool   `mapstructure:"indented"`
	DateLayout string `mapstructure:"date_layout"`
	Format     string `mapstructure:"format"`
	Listen     string `mapstructure:"listen"`
	LogLevel   string `mapstructure:"log_level"`
	// Rules is the path of a YAML rule file applied at startup.
	Rules string `mapstructure:"rules"`
	Redis Redis  `mapstructure:"redis"`
}

// Redis locates message overrides. An empty Addr disables the lookup.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Locale:   "en",
		Format:   string(serialize.FormatJSON),
		Listen:   ":8080",
		LogLevel: "info",
		Redis:    Redis{Prefix: "mold:messages:"},
	}
}

// environment variable -> key path
var envKeys = map[string][]string{
	"MOLD_LOCALE":         {"locale"},
	"MOLD_INDENTED":       {"indented"},
	"MOLD_DATE_LAYOUT":    {"date_layout"},
	"MOLD_FORMAT":         {"format"},
	"MOLD_LISTEN":         {"listen"},
	"MOLD_LOG_LEVEL":      {"log_level"},
	"MOLD_RULES":          {"rules"},
	"MOLD_REDIS_ADDR":     {"redis", "addr"},
	"MOLD_REDIS_PASSWORD": {"redis", "password"},
	"MOLD_REDIS_DB":       {"redis", "db"},
	"MOLD_REDIS_PREFIX":   {"redis", "prefix"},
}

// Load reads path on top of the defaults, then applies the environment. A
// missing file is not an error; an empty path skips the file.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrap(err, "failed to read config")
		}
	}
	return load(bytes.NewReader(data), os.LookupEnv)
}

func load(r io.Reader, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if err := decode(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	if err := decode(environment(lookup), &cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid environment")
	}
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func environment(lookup func(string) (string, bool)) map[string]any {
	out := make(map[string]any)
	for env, path := range envKeys {
		v, ok := lookup(env)
		if !ok {
			continue
		}
		m := out
		for _, p := range path[:len(path)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}
			m = next
		}
		m[path[len(path)-1]] = v
	}
	return out
}

// Validate checks the locale and the format.
func (c Config) Validate() error {
	if _, err := c.Tag(); err != nil {
		return err
	}
	if _, err := serialize.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Tag parses the configured locale.
func (c Config) Tag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, errors.Wrapf(err, "invalid locale %q", c.Locale)
	}
	return tag, nil
}

// Serialization returns the serializer environment defaults.
func (c Config) Serialization() serialize.Defaults {
	// Validate has already accepted the format
	format, _ := serialize.ParseFormat(c.Format)
	return serialize.Defaults{
		Indented:   c.Indented,
		DateLayout: c.DateLayout,
		Format:     format,
	}
}
