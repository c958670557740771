package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/grid"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/scenario"
	"github.com/san-kum/ridersim/internal/track"
	"github.com/san-kum/ridersim/internal/viz"
)

var (
	stressReaders int
	stressEdits   int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	last := cfg.Frames

	reg := track.NewRegistry()
	h, err := cfg.Open(reg)
	if err != nil {
		return err
	}
	defer reg.Close(h)

	// play times Frame(last) and reports how much of the cache it rebuilt.
	play := func() (int, time.Duration, error) {
		var recomputed int
		var elapsed time.Duration
		err := reg.WithRead(h, func(r *track.Reader) error {
			recomputed = max(0, last+1-r.FirstInvalidFrame())
			start := time.Now()
			_, err := r.Frame(last)
			elapsed = time.Since(start)
			return err
		})
		return recomputed, elapsed, err
	}

	edit := func(l grid.Line) (int, error) {
		var firstInvalid int
		err := reg.WithWrite(h, func(w *track.Writer) error {
			if _, err := w.AddLine(l); err != nil {
				return err
			}
			firstInvalid = w.NotifyChanged()
			return nil
		})
		return firstInvalid, err
	}

	fmt.Printf("benchmarking %s (%d frames)\n\n", cfg.Name, last)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tFIRST INVALID\tRECOMPUTED\tTIME\tFRAMES/SEC")

	row := func(name string, firstInvalid int) error {
		n, elapsed, err := play()
		if err != nil {
			return err
		}
		rate := 0.0
		if elapsed > 0 {
			rate = float64(n) / elapsed.Seconds()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", name, firstInvalid, n, elapsed, rate)
		return nil
	}

	if err := row("full", 1); err != nil {
		return err
	}
	if err := row("cached", last+1); err != nil {
		return err
	}

	far := *grid.NewLine(0, grid.Standard, geom.V(1e6, 1e6), geom.V(1e6+100, 1e6))
	fi, err := edit(far)
	if err != nil {
		return err
	}
	if err := row("edit far away", fi); err != nil {
		return err
	}

	var mid physics.Rider
	if err := reg.WithRead(h, func(r *track.Reader) error {
		mid, err = r.Frame(last / 2)
		return err
	}); err != nil {
		return err
	}
	b := mid.Bounds()
	under := *grid.NewLine(0, grid.Standard, geom.V(b.Left-50, b.Bottom+5), geom.V(b.Right+50, b.Bottom+5))
	fi, err = edit(under)
	if err != nil {
		return err
	}
	if err := row("edit mid-run", fi); err != nil {
		return err
	}

	return w.Flush()
}

func scrubScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	reg := track.NewRegistry()
	h, err := cfg.Open(reg)
	if err != nil {
		return err
	}
	defer reg.Close(h)

	p := tea.NewProgram(viz.NewScrubber(reg, h, 80, 24), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Scrubber); ok {
		return m.Err()
	}
	return nil
}

func editScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	sc, err := scenario.LoadScenario(args[1])
	if err != nil {
		return err
	}

	reg := track.NewRegistry()
	h, err := cfg.Open(reg)
	if err != nil {
		return err
	}
	defer reg.Close(h)

	// Play the whole scene first so edits have a cache to invalidate.
	if err := reg.WithRead(h, func(r *track.Reader) error {
		_, err := r.Frame(cfg.Frames)
		return err
	}); err != nil {
		return err
	}

	results, err := scenario.RunScenario(context.Background(), sc, reg, h)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tOP\tLINE\tLINES\tFIRST INVALID\tERROR")
	for _, res := range results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n", res.Index+1, res.Op, res.LineID, res.Lines, res.FirstInvalid, errText)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

// stressScene has readers check two things under every read handle: the
// line count parity the writer preserves, and that each frame follows from
// the one before it against the lines they see. Either failing is a torn read.
func stressScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	last := max(cfg.Frames, 2)

	reg := track.NewRegistry()
	h, err := cfg.Open(reg)
	if err != nil {
		return err
	}
	defer reg.Close(h)

	parity := len(cfg.Lines) % 2
	var reads, torn atomic.Int64

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	readCtx, stopReaders := context.WithCancel(ctx)

	g.Go(func() error {
		defer stopReaders()
		var pair [2]int
		for i := 0; i < stressEdits; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := reg.WithWrite(h, func(w *track.Writer) error {
				defer w.NotifyChanged()
				if pair[0] != 0 {
					for _, id := range pair {
						if _, err := w.RemoveLine(id); err != nil {
							return err
						}
					}
					pair = [2]int{}
					return nil
				}
				y := 10 + rand.Float64()*40
				for j := range pair {
					x := float64(j)*200 - 50
					l, err := w.AddLine(*grid.NewLine(0, grid.Standard, geom.V(x, y), geom.V(x+200, y+float64(j)*10)))
					if err != nil {
						return err
					}
					pair[j] = l.ID
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	for i := 0; i < stressReaders; i++ {
		g.Go(func() error {
			for readCtx.Err() == nil {
				err := reg.WithRead(h, func(r *track.Reader) error {
					if r.LineCount()%2 != parity {
						torn.Add(1)
						slog.Warn("torn read", "reason", "odd line count", "lines", r.LineCount())
					}
					n := 1 + rand.IntN(last)
					prev, err := r.Frame(n - 1)
					if err != nil {
						return err
					}
					cur, err := r.Frame(n)
					if err != nil {
						return err
					}
					if !r.TickBasic(prev, 0).Equal(cur) {
						torn.Add(1)
						slog.Warn("torn read", "reason", "frame mismatch", "frame", n)
					}
					reads.Add(1)
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("readers: %d\n", stressReaders)
	fmt.Printf("edits: %d\n", stressEdits)
	fmt.Printf("reads: %d in %v\n", reads.Load(), time.Since(start))
	fmt.Printf("torn reads: %d\n", torn.Load())
	if torn.Load() > 0 {
		return fmt.Errorf("%d torn reads", torn.Load())
	}
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	results, err := scenario.RunSweep(context.Background(), cfg, &scenario.Sweep{
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
		Frames: cfg.Frames,
	})
	if err != nil {
		return fmt.Errorf("%w (parameters: %v)", err, scenario.SweepParams())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCRASH\tPEAK SPEED\tFINAL X\tFINAL Y\n", sweepParam)
	peaks := make([]float64, len(results))
	for i, res := range results {
		peaks[i] = res.PeakSpeed
		fmt.Fprintf(w, "%.4f\t%d\t%.3f\t%.2f\t%.2f\n", res.Value, res.CrashFrame, res.PeakSpeed, res.Final.X, res.Final.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(peaks) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(peaks,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("peak speed by "+sweepParam),
		))
	}
	return nil
}
