package file

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. LIGHTWAY_STORE_DATA_DIR.
const EnvPrefix = "LIGHTWAY"

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the effective application configuration.
type Config struct {
	Store       StoreConfig       `toml:"store"`
	Ingest      IngestConfig      `toml:"ingest"`
	Derive      DeriveConfig      `toml:"derive"`
	Validation  ValidationConfig  `toml:"validation"`
	Postprocess PostprocessConfig `toml:"postprocess"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir" split_words:"true"`
}

// IngestConfig tunes scan discovery and header parsing.
type IngestConfig struct {
	Extension    string `toml:"extension"`
	FailFast     bool   `toml:"fail_fast" split_words:"true"`
	StrictHeader bool   `toml:"strict_header" split_words:"true"`
	SafeKeys     bool   `toml:"safe_keys" split_words:"true"`
}

// DeriveConfig tunes channel derivation.
type DeriveConfig struct {
	Policy           string `toml:"policy"`
	FluorescenceSign string `toml:"fluorescence_sign" split_words:"true"`
}

// ValidationConfig tunes the record schema.
type ValidationConfig struct {
	Schema     bool     `toml:"schema"`
	Facilities []string `toml:"facilities"`
	Beamlines  []string `toml:"beamlines"`
	Vocabulary string   `toml:"vocabulary"`
}

// PostprocessConfig holds the default operator pipeline.
// Each entry has a "name" key plus the operator parameters.
type PostprocessConfig struct {
	Operators []map[string]any `toml:"operators" ignored:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Ingest: IngestConfig{
			Extension: ".dat",
			SafeKeys:  true,
		},
		Derive: DeriveConfig{
			Policy:           "safe",
			FluorescenceSign: "positive",
		},
		Validation: ValidationConfig{
			Schema:     true,
			Facilities: []string{"NSLSII"},
			Beamlines:  []string{"ISS"},
		},
	}
}

// Load builds the effective configuration: defaults, overlaid by the keys
// present in store, overlaid by LIGHTWAY_* environment variables.
// A nil store skips the file layer.
func Load(store driven.ConfigStore) (*Config, error) {
	cfg := Default()

	if store != nil {
		if err := cfg.apply(store); err != nil {
			return nil, fmt.Errorf("config %s: %w", store.Path(), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs []error
	check := func(key, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of [%s], got %q",
				key, strings.Join(allowed, " "), value))
		}
	}

	check("store.backend", c.Store.Backend, BackendSQLite, BackendMemory)
	check("derive.policy", c.Derive.Policy, "safe", "propagate", "strict")
	check("derive.fluorescence_sign", c.Derive.FluorescenceSign, "positive", "negative")
	if c.Ingest.Extension == "" {
		errs = append(errs, errors.New("ingest.extension must not be empty"))
	}
	for i, op := range c.Postprocess.Operators {
		if name, _ := op["name"].(string); name == "" {
			errs = append(errs, fmt.Errorf("postprocess.operators[%d] has no name", i))
		}
	}

	return errors.Join(errs...)
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// apply overlays every known key present in store. Unknown keys are
// logged and ignored.
func (c *Config) apply(store driven.ConfigStore) error {
	fields := map[string]any{
		"store.backend":            &c.Store.Backend,
		"store.data_dir":           &c.Store.DataDir,
		"ingest.extension":         &c.Ingest.Extension,
		"ingest.fail_fast":         &c.Ingest.FailFast,
		"ingest.strict_header":     &c.Ingest.StrictHeader,
		"ingest.safe_keys":         &c.Ingest.SafeKeys,
		"derive.policy":            &c.Derive.Policy,
		"derive.fluorescence_sign": &c.Derive.FluorescenceSign,
		"validation.schema":        &c.Validation.Schema,
		"validation.facilities":    &c.Validation.Facilities,
		"validation.beamlines":     &c.Validation.Beamlines,
		"validation.vocabulary":    &c.Validation.Vocabulary,
		"postprocess.operators":    &c.Postprocess.Operators,
	}

	var errs []error
	for _, key := range store.Keys() {
		dst, ok := fields[key]
		if !ok {
			logger.Warn("Ignoring unknown config key %s", key)
			continue
		}
		val, _ := store.Get(key)
		if err := assign(dst, val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func assign(dst, val any) error {
	switch d := dst.(type) {
	case *string:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", val)
		}
		*d = s
	case *bool:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("want bool, got %T", val)
		}
		*d = b
	case *[]string:
		items, err := toSlice(val)
		if err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("want string array, got element %T", item)
			}
			out = append(out, s)
		}
		*d = out
	case *[]map[string]any:
		if tables, ok := val.([]map[string]any); ok {
			*d = tables
			return nil
		}
		items, err := toSlice(val)
		if err != nil {
			return err
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("want array of tables, got element %T", item)
			}
			out = append(out, m)
		}
		*d = out
	default:
		return fmt.Errorf("unsupported destination %T", dst)
	}
	return nil
}

func toSlice(val any) ([]any, error) {
	switch v := val.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want array, got %T", val)
	}
}
