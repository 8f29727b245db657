// Package parcconfig loads PARC's external type registry and pass
// configuration from a parcc.toml file, the way internal/project/modules.go
// loads a project's surge.toml [modules] section — same library
// (github.com/BurntSushi/toml), same "decode into a small typed struct"
// shape.
package parcconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"surge/internal/coreir"
)

// NewtypeEntry is one [[newtype]] table in parcc.toml.
type NewtypeEntry struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"` // "value" or "normal"
	Raw  int    `toml:"raw"`
	Scan int    `toml:"scan"`
}

// Config is the decoded shape of a parcc.toml file.
type Config struct {
	Newtype []NewtypeEntry `toml:"newtype"`
	Pass    PassConfig     `toml:"pass"`
}

// PassConfig holds the handful of pass-wide knobs a real front end would
// want to control without recompiling PARC.
type PassConfig struct {
	// TraceLevel holds one of internal/trace's level names ("off", "error",
	// "phase", "detail", "debug"). cmd/parcc does not read it: --trace
	// always renders at trace.LevelDetail.
	TraceLevel string `toml:"trace_level"`
}

// Load reads and decodes a parcc.toml file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parcconfig: %s: %w", path, err)
	}
	return &cfg, nil
}

// Newtypes builds a coreir.Newtypes from the config's [[newtype]] entries,
// seeded first with coreir.DefaultBuiltins so a parcc.toml only needs to
// declare the front end's own data types, not the primitives every program
// uses.
func (c *Config) Newtypes() (coreir.Newtypes, error) {
	entries := coreir.DefaultBuiltins()
	for _, nt := range c.Newtype {
		kind, err := parseDataKind(nt.Kind)
		if err != nil {
			return nil, fmt.Errorf("parcconfig: newtype %q: %w", nt.Name, err)
		}
		entries[nt.Name] = coreir.DataDef{Kind: kind, Raw: nt.Raw, Scan: nt.Scan}
	}
	return coreir.NewStaticNewtypes(entries), nil
}

func parseDataKind(s string) (coreir.DataKind, error) {
	switch s {
	case "", "normal":
		return coreir.DataNormal, nil
	case "value":
		return coreir.DataValue, nil
	default:
		return 0, fmt.Errorf("unknown newtype kind %q (want \"value\" or \"normal\")", s)
	}
}

// LoadNewtypes is a convenience wrapper combining Load and (*Config).Newtypes
// for the common case of a CLI flag naming a single parcc.toml path. If
// path is empty, it returns coreir.DefaultBuiltins alone, so the pass is
// runnable with no config file at all.
func LoadNewtypes(path string) (coreir.Newtypes, error) {
	if path == "" {
		return coreir.NewStaticNewtypes(coreir.DefaultBuiltins()), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("parcconfig: %w", err)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Newtypes()
}
