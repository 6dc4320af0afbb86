package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Load reads and strictly decodes the config file at path. Both YAML and
// JSON are accepted; YAML is coerced to JSON bytes so one strict decoder
// (DisallowUnknownFields) covers both formats.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnv fills secrets from the environment so they never live in files.
func applyEnv(cfg *Config) {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		cfg.Telegram.Token = os.Getenv("BOT_TOKEN")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Reader.SinceHours <= 0 {
		cfg.Reader.SinceHours = 24
	}
	if cfg.Reader.MessageLimit <= 0 {
		cfg.Reader.MessageLimit = 100
	}
	if cfg.Reader.BatchSize <= 0 {
		cfg.Reader.BatchSize = 10
	}
	if cfg.Classifier.ContextMinMatches <= 0 {
		cfg.Classifier.ContextMinMatches = 2
	}
	if cfg.Classifier.FuzzyThreshold <= 0 {
		cfg.Classifier.FuzzyThreshold = 85
	}
	if strings.TrimSpace(cfg.Semantic.Model) == "" {
		cfg.Semantic.Model = "gpt-4o-mini"
	}
	if cfg.Semantic.BatchSize <= 0 {
		cfg.Semantic.BatchSize = 15
	}
	if cfg.Dedup.WindowDays <= 0 {
		cfg.Dedup.WindowDays = 7
	}
	if cfg.Dedup.TitleThreshold <= 0 {
		cfg.Dedup.TitleThreshold = 90
	}
	if cfg.Dedup.RetentionDays <= 0 {
		cfg.Dedup.RetentionDays = 30
	}
	if strings.TrimSpace(cfg.Schedule.Time) == "" {
		cfg.Schedule.Time = "21:00"
	}
	if strings.TrimSpace(cfg.Schedule.Timezone) == "" {
		cfg.Schedule.Timezone = "Europe/Moscow"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = "./vacradar.db"
	}
}

// coerceToJSONBytes converts YAML config to JSON bytes so the strict JSON
// decoder serves both formats.
func coerceToJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	v = normalizeYAML(v)
	j, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// normalizeYAML ensures all map keys are strings so the result can be
// JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
