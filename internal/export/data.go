// Package export writes runs and beaker snapshots to JSON, CSV, SVG and PNG.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/phsim/internal/chem"
	"github.com/san-kum/phsim/internal/storage"
)

type ExportData struct {
	ID                string             `json:"id"`
	Substance         string             `json:"substance"`
	Type              string             `json:"type"`
	Molarity          float64            `json:"molarity"`
	BeakerVolume      float64            `json:"beaker_volume"`
	TitrantMolarity   float64            `json:"titrant_molarity"`
	EquivalenceVolume float64            `json:"equivalence_volume"`
	Samples           int                `json:"samples"`
	Volumes           []float64          `json:"volumes"`
	PH                []float64          `json:"ph"`
	Metrics           map[string]float64 `json:"metrics"`
}

func FromRun(meta storage.RunMetadata, curve []chem.CurvePoint) ExportData {
	data := ExportData{
		ID:                meta.ID,
		Substance:         meta.Substance,
		Type:              meta.Type,
		Molarity:          meta.Molarity,
		BeakerVolume:      meta.BeakerVolume,
		TitrantMolarity:   meta.TitrantMolarity,
		EquivalenceVolume: meta.EquivalenceVolume,
		Samples:           len(curve),
		Volumes:           make([]float64, len(curve)),
		PH:                make([]float64, len(curve)),
		Metrics:           meta.Metrics,
	}
	for i, p := range curve {
		data.Volumes[i] = p.Volume
		data.PH[i] = p.PH
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes data to path, or to stdout when path is "" or "-".
func ExportJSON(path string, data ExportData) error {
	if path == "" || path == "-" {
		return WriteJSON(os.Stdout, data)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteCSV(w io.Writer, curve []chem.CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"volume", "ph"}); err != nil {
		return err
	}
	for _, p := range curve {
		row := []string{
			strconv.FormatFloat(p.Volume, 'f', 6, 64),
			strconv.FormatFloat(p.PH, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
