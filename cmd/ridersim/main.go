package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ridersim/internal/archive"
	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/export"
	"github.com/san-kum/ridersim/internal/metrics"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/sim"
	"github.com/san-kum/ridersim/internal/storage"
	"github.com/san-kum/ridersim/internal/track"
)

var (
	dataDir     string
	verbose     bool
	frames      int
	from        int
	iterations  int
	cellSize    float64
	retention   int
	save        bool
	archivePath string
	svgPath     string
	jsonPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ridersim",
		Short: "sled rider physics sandbox",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ridersim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene|preset]",
		Short: "simulate a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&from, "from", 0, "first frame to play")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "record the run in a sqlite archive")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg of the track and rider path")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write every played pose as json")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&archivePath, "archive", "", "list runs from a sqlite archive instead")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot rider height and speed of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene|preset]",
		Short: "time a full simulation against incremental recomputes",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)

	scrubCmd := &cobra.Command{
		Use:   "scrub [scene|preset]",
		Short: "step through a scene interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  scrubScene,
	}
	addSceneFlags(scrubCmd)

	editCmd := &cobra.Command{
		Use:   "edit [scene|preset] [script.yaml]",
		Short: "replay an edit script and report the first invalid frame",
		Args:  cobra.ExactArgs(2),
		RunE:  editScene,
	}
	addSceneFlags(editCmd)

	stressCmd := &cobra.Command{
		Use:   "stress [scene|preset]",
		Short: "scrub from many readers while a writer edits",
		Args:  cobra.ExactArgs(1),
		RunE:  stressScene,
	}
	addSceneFlags(stressCmd)
	stressCmd.Flags().IntVar(&stressReaders, "readers", 8, "reader goroutines")
	stressCmd.Flags().IntVar(&stressEdits, "edits", 200, "writer edits")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene|preset]",
		Short: "play a scene across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScene,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "momentum_x", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of values")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce frequency and phase portrait of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	chaosCmd := &cobra.Command{
		Use:   "chaos [scene|preset]",
		Short: "measure how fast a nudged start drifts from the unchanged ride",
		Args:  cobra.ExactArgs(1),
		RunE:  chaosScene,
	}
	addSceneFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&perturbation, "nudge", 1e-6, "start offset in x")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLINES\tFRAMES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\n", name, len(p.Lines), p.Frames)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, benchCmd, scrubCmd, editCmd, stressCmd, sweepCmd, analyzeCmd, chaosCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate (0 uses the scene's)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "bone relaxation passes per frame")
	cmd.Flags().Float64Var(&cellSize, "cell-size", 0, "grid cell size")
	cmd.Flags().IntVar(&retention, "retention", 0, "frames kept in the timeline cache (0 keeps all)")
}

// loadScene resolves a preset or scene file and applies any scene flags the
// user set.
func loadScene(cmd *cobra.Command, nameOrPath string) (*config.Config, error) {
	cfg, err := config.Resolve(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("iterations") {
		cfg.Physics.Iterations = iterations
	}
	if flags.Changed("cell-size") {
		cfg.Physics.CellSize = cellSize
	}
	if flags.Changed("retention") {
		cfg.Physics.Retention = retention
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("scene loaded", "name", cfg.Name, "lines", len(cfg.Lines), "frames", cfg.Frames)
	return cfg, nil
}

func runScene(cmd *cobra.Command, args []string) error {
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

	var snap track.Snapshot
	var topo *physics.Topology
	_ = reg.WithRead(h, func(r *track.Reader) error {
		snap = r.Snapshot()
		topo = r.Topology()
		return nil
	})

	s := sim.New(reg, h)
	gravity := cfg.Options().Params.Gravity
	s.AddMetric(metrics.NewSpeed())
	s.AddMetric(metrics.NewPeakSpeed())
	s.AddMetric(metrics.NewCrash())
	s.AddMetric(metrics.NewEnergyDrift(gravity))
	s.AddMetric(metrics.NewStability(50))

	fmt.Printf("simulating %s...\n", cfg.Name)
	start := time.Now()
	result, err := s.Run(context.Background(), sim.Config{From: from, Frames: cfg.Frames, Keep: true})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d..%d\n", from, from+result.FramesPlayed-1)
	if result.CrashFrame >= 0 {
		fmt.Printf("crashed at frame %d\n", result.CrashFrame)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	height := make([]float64, len(result.Riders))
	for i, r := range result.Riders {
		height[i] = -r.Center().Y
	}
	if len(height) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(height,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("sled height"),
		))
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, from, result)
		if err != nil {
			return err
		}
		slog.Info("run saved", "id", runID, "dir", filepath.Join(dataDir, runID))
		fmt.Printf("\nrun id: %s\n", runID)
	}

	if archivePath != "" {
		a, err := archive.Open(archivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		id, err := a.Record(context.Background(), cfg.Name, len(cfg.Lines), from, result)
		if err != nil {
			return err
		}
		slog.Info("run archived", "id", id, "archive", archivePath)
	}

	if svgPath != "" {
		svg := export.TrackToSVG(snap, result.Riders, topo, 800, 600)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
	}

	if jsonPath != "" {
		if err := export.ExportJSON(jsonPath, cfg.Name, from, result); err != nil {
			return err
		}
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if archivePath != "" {
		a, err := archive.Open(archivePath)
		if err != nil {
			return err
		}
		defer a.Close()
		runs, err := a.Runs(context.Background(), "")
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs found")
			return nil
		}
		fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tCRASH\tPEAK")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3f\n",
				run.ID, run.Scene, run.CreatedAt.Format("2006-01-02 15:04:05"),
				run.Frames, run.CrashFrame, run.PeakSpeed)
		}
		return w.Flush()
	}

	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tLINES\tCRASH")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Lines,
			run.CrashFrame,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
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
	if len(records) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(records))

	height := make([]float64, len(records))
	speed := make([]float64, len(records))
	for i, rec := range records {
		height[i] = -rec.Center.Y
		speed[i] = rec.Speed
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"sled height", height},
		{"speed", speed},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
