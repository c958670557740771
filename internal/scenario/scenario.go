// Package scenario replays scripted track edits and parameter sweeps.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/track"
)

// Op names a scripted action.
type Op string

const (
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpReplace     Op = "replace"
	OpStart       Op = "start"
	OpRepartition Op = "repartition"
	OpRename      Op = "rename"
	OpPlay        Op = "play"
	OpNotify      Op = "notify"
)

var ErrUnknownOp = errors.New("scenario: unknown op")

// Scenario is a scripted sequence of edits against one track.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Batch defers NotifyChanged to explicit notify steps.
	Batch bool `yaml:"batch"`
	// ContinueOnError logs a failed step and moves on to the next one.
	ContinueOnError bool   `yaml:"continue_on_error"`
	Steps           []Step `yaml:"steps"`
}

// Step is a single action. Fields not used by its op are ignored.
type Step struct {
	Op       Op                 `yaml:"op"`
	Line     *config.LineConfig `yaml:"line,omitempty"`
	ID       int                `yaml:"id,omitempty"`
	Frame    int                `yaml:"frame,omitempty"`
	X        float64            `yaml:"x,omitempty"`
	Y        float64            `yaml:"y,omitempty"`
	Momentum *[2]float64        `yaml:"momentum,omitempty"`
	CellSize float64            `yaml:"cell_size,omitempty"`
	Name     string             `yaml:"name,omitempty"`
}

// StepResult records the track right after a step.
type StepResult struct {
	Index        int
	Op           Op
	LineID       int
	Lines        int
	FirstInvalid int
	Err          error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sc, nil
}

// RunScenario applies every step to the track at h. Each edit runs under its
// own write handle; unless the scenario is batched, the timeline is notified
// under a read handle after every edit.
func RunScenario(ctx context.Context, sc *Scenario, reg *track.Registry, h track.Handle) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := StepResult{Index: i, Op: step.Op}
		var err error
		switch step.Op {
		case OpPlay, OpNotify:
			err = reg.WithRead(h, func(r *track.Reader) error {
				if step.Op == OpPlay {
					_, err := r.Frame(step.Frame)
					return err
				}
				r.NotifyChanged()
				return nil
			})
		default:
			err = reg.WithWrite(h, func(w *track.Writer) error {
				id, err := apply(w, step)
				res.LineID = id
				return err
			})
			if err == nil && !sc.Batch {
				err = reg.WithRead(h, func(r *track.Reader) error {
					r.NotifyChanged()
					return nil
				})
			}
		}
		if err != nil {
			err = fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
			if !sc.ContinueOnError {
				return results, err
			}
			slog.Warn("scenario step failed", "step", i+1, "op", step.Op, "err", err)
			res.Err = err
		}

		_ = reg.WithRead(h, func(r *track.Reader) error {
			res.Lines = r.LineCount()
			res.FirstInvalid = r.FirstInvalidFrame()
			return nil
		})
		slog.Debug("scenario step", "step", i+1, "op", step.Op, "first_invalid", res.FirstInvalid)
		results = append(results, res)
	}

	return results, nil
}

func apply(w *track.Writer, step Step) (int, error) {
	switch step.Op {
	case OpAdd, OpReplace:
		if step.Line == nil {
			return 0, fmt.Errorf("%s needs a line", step.Op)
		}
		l, err := step.Line.Line()
		if err != nil {
			return 0, err
		}
		if step.Op == OpReplace {
			placed, err := w.ReplaceLine(step.ID, l)
			if err != nil {
				return 0, err
			}
			return placed.ID, nil
		}
		l.ID = step.ID
		placed, err := w.AddLine(l)
		if err != nil {
			return 0, err
		}
		return placed.ID, nil
	case OpRemove:
		_, err := w.RemoveLine(step.ID)
		return step.ID, err
	case OpStart:
		_, momentum := w.Start()
		if step.Momentum != nil {
			momentum = geom.V(step.Momentum[0], step.Momentum[1])
		}
		w.SetStart(geom.V(step.X, step.Y), momentum)
		return 0, nil
	case OpRepartition:
		_, err := w.Repartition(step.CellSize)
		return 0, err
	case OpRename:
		w.SetName(step.Name)
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
}
