package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/san-kum/ridersim/internal/sim"
)

type ExportData struct {
	Scene      string             `json:"scene"`
	From       int                `json:"from"`
	Frames     int                `json:"frames"`
	CrashFrame int                `json:"crash_frame"`
	Metrics    map[string]float64 `json:"metrics"`
	Riders     []ExportRider      `json:"riders"`
}

type ExportRider struct {
	Frame   int         `json:"frame"`
	Crashed bool        `json:"crashed"`
	Points  []geom.Vec2 `json:"points"`
}

func newExportData(scene string, from int, result *sim.Result) ExportData {
	data := ExportData{
		Scene:      scene,
		From:       from,
		Frames:     len(result.Riders),
		CrashFrame: result.CrashFrame,
		Metrics:    result.Metrics,
		Riders:     make([]ExportRider, len(result.Riders)),
	}
	for i, r := range result.Riders {
		pts := make([]geom.Vec2, len(r.Points))
		for j, p := range r.Points {
			pts[j] = p.Pos
		}
		data.Riders[i] = ExportRider{Frame: from + i, Crashed: r.Crashed(), Points: pts}
	}
	return data
}

// WriteJSON encodes a played result as indented JSON.
func WriteJSON(w io.Writer, scene string, from int, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(scene, from, result))
}

func ExportJSON(path, scene string, from int, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, scene, from, result)
}
