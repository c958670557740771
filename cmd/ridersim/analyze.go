package main

import (
	"context"
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ridersim/internal/analysis"
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/storage"
)

var perturbation float64

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(records) < 4 {
		return fmt.Errorf("not enough frames to analyze")
	}

	centers := make([]geom.Vec2, len(records))
	for i, rec := range records {
		centers[i] = rec.Center
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	ps := analysis.PowerSpectrum(analysis.Heights(centers))
	fmt.Println(asciigraph.Plot(ps[:max(2, len(ps)/4)],
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (sled height)"),
	))
	fmt.Println()

	if period := analysis.DominantPeriod(ps, len(records)); period > 0 {
		fmt.Printf("dominant period: %.1f frames\n\n", period)
	} else {
		fmt.Print("no dominant period\n\n")
	}

	fmt.Println("phase portrait (height vs vertical speed):")
	fmt.Print(analysis.NewPhasePortrait(centers).ASCII(70, 20))
	return nil
}

func chaosScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	d, err := analysis.Divergence(context.Background(), cfg, perturbation, cfg.Frames)
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(d.Separation,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("separation after a %g start nudge", perturbation)),
	))
	fmt.Printf("\nfinal separation: %.6g\n", d.Separation[len(d.Separation)-1])
	fmt.Printf("divergence rate: %.5f per frame\n", d.Rate)
	if d.Rate > 0 {
		fmt.Println("ride is sensitive to its start")
	}
	return nil
}
