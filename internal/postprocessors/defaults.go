package postprocessors

import (
	"fmt"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/postprocessors/normalize"
	"github.com/lightway-xas/lightway/internal/postprocessors/quality"
	"github.com/lightway-xas/lightway/internal/postprocessors/standardize"
)

// RegisterDefaults registers all built-in operators with the registry.
// Call this during application initialisation to enable standard operators.
func RegisterDefaults(r *Registry) {
	r.Register(standardize.Name, buildStandardize)
	r.Register(normalize.Name, buildNormalize)
	r.Register(quality.Name, buildQuality)
}

// DefaultRegistry returns a registry with the built-in operators.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildStandardize creates a grid operator from generic config.
// Supported config keys:
//   - x0, xf (float): Grid bounds (required)
//   - nx (int): Number of grid points (required)
//   - x_column (string): Grid column (default: energy)
//   - y_columns ([]string): Interpolated columns (default: [mu])
func buildStandardize(cfg map[string]any) (driven.Operator, error) {
	x0, ok := getFloatFromConfig(cfg, "x0")
	if !ok {
		return nil, missingKey("x0")
	}
	xf, ok := getFloatFromConfig(cfg, "xf")
	if !ok {
		return nil, missingKey("xf")
	}
	nx, ok := getIntFromConfig(cfg, "nx")
	if !ok {
		return nil, missingKey("nx")
	}

	var opts []standardize.Option
	if col, ok := getStringFromConfig(cfg, "x_column"); ok {
		opts = append(opts, standardize.WithXColumn(col))
	}
	if cols, ok := getStringsFromConfig(cfg, "y_columns"); ok {
		opts = append(opts, standardize.WithYColumns(cols...))
	}
	return standardize.New(x0, xf, nx, opts...)
}

// buildNormalize creates an edge normalisation operator from generic config.
// Supported config keys:
//   - e0 (float): Edge energy (default: steepest rise)
//   - pre1, pre2 (float): Pre-edge region relative to e0 (default: -200, -30)
//   - norm1, norm2 (float): Post-edge region relative to e0 (default: 100, last point)
//   - nnorm (int): Post-edge polynomial degree (default: 2)
//   - x_column (string), y_columns ([]string)
func buildNormalize(cfg map[string]any) (driven.Operator, error) {
	var opts []normalize.Option

	if e0, ok := getFloatFromConfig(cfg, "e0"); ok {
		opts = append(opts, normalize.WithE0(e0))
	}
	pre1, ok1 := getFloatFromConfig(cfg, "pre1")
	pre2, ok2 := getFloatFromConfig(cfg, "pre2")
	if ok1 || ok2 {
		if !ok1 {
			pre1 = normalize.DefaultPre1
		}
		if !ok2 {
			pre2 = normalize.DefaultPre2
		}
		opts = append(opts, normalize.WithPreEdge(pre1, pre2))
	}
	if norm1, ok := getFloatFromConfig(cfg, "norm1"); ok {
		opts = append(opts, normalize.WithNormStart(norm1))
	}
	if norm2, ok := getFloatFromConfig(cfg, "norm2"); ok {
		opts = append(opts, normalize.WithNormEnd(norm2))
	}
	if nnorm, ok := getIntFromConfig(cfg, "nnorm"); ok {
		opts = append(opts, normalize.WithNNorm(nnorm))
	}
	if col, ok := getStringFromConfig(cfg, "x_column"); ok {
		opts = append(opts, normalize.WithXColumn(col))
	}
	if cols, ok := getStringsFromConfig(cfg, "y_columns"); ok {
		opts = append(opts, normalize.WithYColumns(cols...))
	}
	return normalize.New(opts...)
}

// buildQuality creates a quality labelling operator from generic config.
// Supported config keys:
//   - negative_threshold (float): Tolerated fraction of mu < 0 (default: 0.2)
//   - tail_positive_threshold (float): Tolerated tail overshoot fraction (default: 0.02)
func buildQuality(cfg map[string]any) (driven.Operator, error) {
	var opts []quality.Option
	if f, ok := getFloatFromConfig(cfg, "negative_threshold"); ok {
		opts = append(opts, quality.WithNegativeThreshold(f))
	}
	if f, ok := getFloatFromConfig(cfg, "tail_positive_threshold"); ok {
		opts = append(opts, quality.WithTailPositiveThreshold(f))
	}
	return quality.New(opts...), nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, key)
}

// getFloatFromConfig safely extracts a float from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// getIntFromConfig safely extracts an int from generic config map.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// getStringFromConfig extracts a non-empty string.
func getStringFromConfig(cfg map[string]any, key string) (string, bool) {
	s, ok := cfg[key].(string)
	return s, ok && s != ""
}

// getStringsFromConfig extracts a string list, which TOML and JSON decode
// as []any.
func getStringsFromConfig(cfg map[string]any, key string) ([]string, bool) {
	switch v := cfg[key].(type) {
	case []string:
		return v, len(v) > 0
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
