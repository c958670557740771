package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/physics"
	"github.com/san-kum/ridersim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	sceneFile    = "scene.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	From       int                `json:"from"`
	Frames     int                `json:"frames"`
	Lines      int                `json:"lines"`
	Iterations int                `json:"iterations"`
	CellSize   float64            `json:"cell_size"`
	CrashFrame int                `json:"crash_frame"`
	Metrics    map[string]float64 `json:"metrics"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame   int
	Center  geom.Vec2
	Speed   float64
	Crashed bool
	Points  []geom.Vec2
}

// Save writes a run directory holding the scene, its metadata and one CSV
// row per played frame. The result must have been run with Keep set.
func (s *Store) Save(cfg *config.Config, from int, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d_%s", cfg.Name, time.Now().Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Name,
		Timestamp:  time.Now(),
		From:       from,
		Frames:     len(result.Riders),
		Lines:      len(cfg.Lines),
		Iterations: cfg.Physics.Iterations,
		CellSize:   cfg.Physics.CellSize,
		CrashFrame: result.CrashFrame,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, sceneFile), cfg); err != nil {
		return "", err
	}

	if err := writeFrames(filepath.Join(runDir, framesFile), from, result.Riders); err != nil {
		return "", err
	}
	return runID, nil
}

func writeFrames(path string, from int, riders []physics.Rider) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if len(riders) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"frame", "center_x", "center_y", "speed", "crashed"}
	for i := range riders[0].Points {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, r := range riders {
		c := r.Center()
		row := []string{
			strconv.Itoa(from + i),
			formatFloat(c.X),
			formatFloat(c.Y),
			formatFloat(r.Speed()),
			strconv.FormatBool(r.Crashed()),
		}
		for _, p := range r.Points {
			row = append(row, formatFloat(p.Pos.X), formatFloat(p.Pos.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadScene reads back the scene a run was played from.
func (s *Store) LoadScene(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		rec, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		frames = append(frames, rec)
	}

	return frames, nil
}

func parseRecord(record []string) (FrameRecord, error) {
	var rec FrameRecord
	var err error
	if rec.Frame, err = strconv.Atoi(record[0]); err != nil {
		return rec, err
	}
	vals := make([]float64, 0, len(record)-1)
	for i, field := range record[1:] {
		if i == 3 {
			if rec.Crashed, err = strconv.ParseBool(field); err != nil {
				return rec, err
			}
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return rec, err
		}
		vals = append(vals, v)
	}
	rec.Center = geom.V(vals[0], vals[1])
	rec.Speed = vals[2]
	for i := 3; i+1 < len(vals); i += 2 {
		rec.Points = append(rec.Points, geom.V(vals[i], vals[i+1]))
	}
	return rec, nil
}
