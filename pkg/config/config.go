// Package config loads the host's link timing configuration from YAML and
// validates it against a JSON Schema document before it ever reaches
// snet.Timing, so a malformed file fails fast at startup instead of
// silently falling back to engine defaults everywhere.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/retro-plastics/squid/pkg/snet"
)

// LinkConfig is the on-disk shape of the timing document.
type LinkConfig struct {
	Serial struct {
		Port string `yaml:"port"`
		Baud int    `yaml:"baud"`
	} `yaml:"serial"`
	Timing struct {
		TimeoutTicks  int `yaml:"timeout_ticks"`
		AckDelayTicks int `yaml:"ack_delay_ticks"`
		PingTicks     int `yaml:"ping_ticks"`
		MaxRetries    int `yaml:"max_retries"`
	} `yaml:"timing"`
	Channels struct {
		DefaultTxCap int `yaml:"default_tx_cap"`
		DefaultRxCap int `yaml:"default_rx_cap"`
	} `yaml:"channels"`
}

// Timing converts the loaded document into snet.Timing. Zero values for
// TimeoutTicks/AckDelayTicks/MaxRetries are resolved to the engine's
// documented defaults by snet.NewEngine itself; this is a plain field copy.
func (c LinkConfig) Timing() snet.Timing {
	return snet.Timing{
		TimeoutTicks:  uint8(c.Timing.TimeoutTicks),
		AckDelayTicks: uint8(c.Timing.AckDelayTicks),
		PingTicks:     uint8(c.Timing.PingTicks),
		MaxRetries:    uint8(c.Timing.MaxRetries),
	}
}

// schemaDoc constrains the document's shape: tick values must lie in
// 0..127 (half of the 8-bit tick counter's modulo-256 range), max_retries
// must fit in a byte, baud (when given) must be positive, channel caps must
// not be negative, and keys beyond the listed ones are rejected.
const schemaDoc = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "serial": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "port": {"type": "string"},
        "baud": {"type": "integer", "minimum": 1}
      }
    },
    "timing": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "timeout_ticks":   {"type": "integer", "minimum": 0, "maximum": 127},
        "ack_delay_ticks": {"type": "integer", "minimum": 0, "maximum": 127},
        "ping_ticks":      {"type": "integer", "minimum": 0, "maximum": 127},
        "max_retries":     {"type": "integer", "minimum": 0, "maximum": 255}
      }
    },
    "channels": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "default_tx_cap": {"type": "integer", "minimum": 0},
        "default_rx_cap": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var schemaMap any
		if err := json.Unmarshal([]byte(schemaDoc), &schemaMap); err != nil {
			compileErr = fmt.Errorf("unmarshal embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("link-config.json", schemaMap); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("link-config.json")
	})
	return compiled, compileErr
}

// Load reads path as YAML, validates it against the embedded timing-config
// schema, and returns the decoded document.
func Load(path string) (LinkConfig, error) {
	var cfg LinkConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading link config: %w", err)
	}

	// Validation runs against the generic YAML->JSON-compatible shape, not
	// the typed struct, so the schema can reject fields the struct would
	// silently ignore.
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return cfg, fmt.Errorf("parsing link config: %w", err)
	}
	asJSON, err := json.Marshal(normalizeYAMLMap(generic))
	if err != nil {
		return cfg, fmt.Errorf("normalizing link config: %w", err)
	}
	var instance any
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return cfg, fmt.Errorf("re-decoding link config: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return cfg, fmt.Errorf("compiling link config schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return cfg, fmt.Errorf("link config failed validation: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding link config: %w", err)
	}
	return cfg, nil
}

// normalizeYAMLMap converts the map[string]any / map[interface{}]interface{}
// trees yaml.v3 produces into plain map[string]any trees encoding/json can
// marshal, recursing through nested maps and slices.
func normalizeYAMLMap(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAMLMap(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLMap(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAMLMap(vv)
		}
		return out
	default:
		return val
	}
}
