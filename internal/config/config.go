package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Origins holds the two configured mirror base URLs.
type Origins struct {
	Main     string `yaml:"main" json:"main"`
	Fallback string `yaml:"fallback" json:"fallback"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" json:"level,omitempty"`
	File       string `yaml:"file" json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups,omitempty"`
}

// GlobalConfig is the tool configuration, loaded once at startup.
type GlobalConfig struct {
	Origins        Origins       `yaml:"origins" json:"origins"`
	CacheDir       string        `yaml:"cache_dir" json:"cache_dir"`
	ContentDir     string        `yaml:"content_dir" json:"content_dir"`
	Workers        int           `yaml:"workers" json:"workers,omitempty"`
	TimeoutSeconds int           `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	Logging        LoggingConfig `yaml:"logging" json:"logging,omitempty"`
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["origins", "cache_dir", "content_dir"],
  "properties": {
    "origins": {
      "type": "object",
      "required": ["main", "fallback"],
      "properties": {
        "main": {"type": "string", "minLength": 1},
        "fallback": {"type": "string", "minLength": 1}
      }
    },
    "cache_dir": {"type": "string", "minLength": 1},
    "content_dir": {"type": "string", "minLength": 1},
    "workers": {"type": "integer", "minimum": 1},
    "timeout_seconds": {"type": "integer", "minimum": 1},
    "logging": {
      "type": "object",
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "file": {"type": "string"},
        "max_size_mb": {"type": "integer", "minimum": 1},
        "max_backups": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var configSchema = jsonschema.MustCompileString("manifest-sync.schema.json", schemaJSON)

// GlConfig is the loaded global configuration, set by Load.
var GlConfig *GlobalConfig

// Load reads, schema-validates and decodes the YAML configuration file.
// Defaults are applied after validation so explicit bad values still fail.
func Load(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	GlConfig = cfg
	return cfg, nil
}

// Parse validates and decodes raw YAML configuration bytes.
func Parse(data []byte) (*GlobalConfig, error) {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if err := configSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}
	return &cfg, nil
}

// Timeout returns the per-request timeout as a duration.
func (c *GlobalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
