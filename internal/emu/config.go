package emu

import "github.com/BurntSushi/toml"

// KeyMap holds the host keyboard key bound to each button, read from the
// `[keys]` table of a config file. Values are the recognized key names
// listed in spec §6 (e.g. "Up", "Z", "Enter").
type KeyMap struct {
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
	A      string `toml:"a"`
	B      string `toml:"b"`
	Start  string `toml:"start"`
	Select string `toml:"select"`
}

// DefaultKeyMap is the mapping spec §6 names as the default when no
// keyboard adapter configuration overrides it.
var DefaultKeyMap = KeyMap{
	Up: "Up", Down: "Down", Left: "Left", Right: "Right",
	A: "Z", B: "E", Start: "D", Select: "S",
}

// Config holds settings loaded from an optional TOML file, overridable by
// CLI flags.
type Config struct {
	Trace    bool   `toml:"trace"`
	BootROM  string `toml:"boot_rom"`
	Keys     KeyMap `toml:"keys"`
}

// DefaultConfig returns a Config with the spec's default key mapping and
// tracing disabled.
func DefaultConfig() Config {
	return Config{Keys: DefaultKeyMap}
}

// LoadConfig reads a TOML config file, starting from DefaultConfig and
// overlaying whatever the file sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, err
	}
	if cfg.Keys == (KeyMap{}) {
		cfg.Keys = DefaultKeyMap
	}
	return cfg, nil
}
