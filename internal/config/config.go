package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/track"
)

const (
	DefaultFrames   = 400
	DefaultName     = "untitled"
	DefaultCellSize = grid.DefaultCellSize
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid scene")

type Config struct {
	Name    string        `yaml:"name"`
	Frames  int           `yaml:"frames"`
	Physics PhysicsConfig `yaml:"physics"`
	Start   StartConfig   `yaml:"start"`
	Lines   []LineConfig  `yaml:"lines"`
}

type PhysicsConfig struct {
	GravityX   float64 `yaml:"gravity_x"`
	GravityY   float64 `yaml:"gravity_y"`
	Iterations int     `yaml:"iterations"`
	CellSize   float64 `yaml:"cell_size"`
	Retention  int     `yaml:"retention"`
}

type StartConfig struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	MomentumX float64 `yaml:"momentum_x"`
	MomentumY float64 `yaml:"momentum_y"`
}

type LineConfig struct {
	Type       string  `yaml:"type,omitempty"`
	X1         float64 `yaml:"x1"`
	Y1         float64 `yaml:"y1"`
	X2         float64 `yaml:"x2"`
	Y2         float64 `yaml:"y2"`
	Flipped    bool    `yaml:"flipped,omitempty"`
	LeftExt    bool    `yaml:"left_ext,omitempty"`
	RightExt   bool    `yaml:"right_ext,omitempty"`
	Multiplier float64 `yaml:"multiplier,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:   DefaultName,
		Frames: DefaultFrames,
		Physics: PhysicsConfig{
			GravityX:   physics.Gravity.X,
			GravityY:   physics.Gravity.Y,
			Iterations: physics.DefaultIterations,
			CellSize:   DefaultCellSize,
		},
		Start: StartConfig{
			MomentumX: physics.StartingMomentum.X,
			MomentumY: physics.StartingMomentum.Y,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Lines = slices.Clone(c.Lines)
	return &out
}

func (c *Config) Validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalid, c.Frames)
	}
	if c.Physics.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalid, c.Physics.Iterations)
	}
	if c.Physics.Retention < 0 {
		return fmt.Errorf("%w: retention must not be negative, got %d", ErrInvalid, c.Physics.Retention)
	}
	if cs := c.Physics.CellSize; cs != 0 && !(cs > 0 && !math.IsInf(cs, 0)) {
		return fmt.Errorf("%w: cell_size must be positive, got %v", ErrInvalid, cs)
	}
	for i, l := range c.Lines {
		if _, err := grid.ParseLineType(l.Type); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrInvalid, i, err)
		}
		for _, v := range []float64{l.X1, l.Y1, l.X2, l.Y2, l.Multiplier} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: line %d has a non-finite coordinate", ErrInvalid, i)
			}
		}
	}
	return nil
}

// Options maps the scene settings onto track options.
func (c *Config) Options() track.Options {
	return track.Options{
		Name: c.Name,
		Params: physics.Params{
			Gravity:    geom.V(c.Physics.GravityX, c.Physics.GravityY),
			Iterations: c.Physics.Iterations,
		},
		Start:     geom.V(c.Start.X, c.Start.Y),
		Momentum:  geom.V(c.Start.MomentumX, c.Start.MomentumY),
		CellSize:  c.Physics.CellSize,
		Retention: c.Physics.Retention,
	}
}

func (l LineConfig) Line() (grid.Line, error) {
	typ, err := grid.ParseLineType(l.Type)
	if err != nil {
		return grid.Line{}, err
	}
	return grid.Line{
		Type:       typ,
		Start:      geom.V(l.X1, l.Y1),
		End:        geom.V(l.X2, l.Y2),
		Flipped:    l.Flipped,
		LeftExt:    l.LeftExt,
		RightExt:   l.RightExt,
		Multiplier: l.Multiplier,
	}, nil
}

// FromLine is the inverse of LineConfig.Line.
func FromLine(l grid.Line) LineConfig {
	lc := LineConfig{
		X1: l.Start.X, Y1: l.Start.Y,
		X2: l.End.X, Y2: l.End.Y,
		Flipped:  l.Flipped,
		LeftExt:  l.LeftExt,
		RightExt: l.RightExt,
	}
	if l.Type != grid.Standard {
		lc.Type = l.Type.String()
	}
	if l.Type == grid.Acceleration && l.Multiplier != grid.DefaultMultiplier {
		lc.Multiplier = l.Multiplier
	}
	return lc
}

// Open builds the scene's track in reg, places its lines and returns the
// handle.
func (c *Config) Open(reg *track.Registry) (track.Handle, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	h, err := reg.Create(c.Options())
	if err != nil {
		return 0, err
	}
	err = reg.WithWrite(h, func(w *track.Writer) error {
		for i, lc := range c.Lines {
			l, err := lc.Line()
			if err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
			if _, err := w.AddLine(l); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = reg.Close(h)
		return 0, err
	}
	return h, nil
}

// FromSnapshot writes a track's current state back into a copy of c.
func (c *Config) FromSnapshot(s track.Snapshot) *Config {
	out := c.Clone()
	out.Name = s.Name
	out.Start = StartConfig{X: s.Start.X, Y: s.Start.Y, MomentumX: s.Momentum.X, MomentumY: s.Momentum.Y}
	out.Physics.CellSize = s.CellSize
	out.Lines = make([]LineConfig, 0, len(s.Lines))
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, FromLine(l))
	}
	return out
}
