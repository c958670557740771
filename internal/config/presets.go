package config

import "slices"

func scene(name string, frames int, lines ...LineConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Frames = frames
	cfg.Lines = lines
	return cfg
}

func standard(x1, y1, x2, y2 float64) LineConfig {
	return LineConfig{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

var Presets = map[string]*Config{
	"flat": scene("flat", 400,
		standard(-50, 20, 1000, 20),
	),
	"ramp": scene("ramp", 600,
		standard(-50, 20, 300, 120),
		standard(300, 120, 2000, 120),
	),
	"drop": scene("drop", 500,
		standard(-50, 20, 100, 20),
		standard(50, 150, 1500, 150),
	),
	"booster": scene("booster", 500,
		standard(-50, 20, 100, 20),
		LineConfig{Type: "acceleration", X1: 100, Y1: 20, X2: 300, Y2: 20, Multiplier: 2},
		standard(300, 20, 3000, 20),
		LineConfig{Type: "scenery", X1: 100, Y1: 0, X2: 300, Y2: 0},
	),
	"empty": scene("empty", 200),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the named preset, or loads nameOrPath as a scene file.
func Resolve(nameOrPath string) (*Config, error) {
	if cfg := GetPreset(nameOrPath); cfg != nil {
		return cfg, nil
	}
	return Load(nameOrPath)
}
