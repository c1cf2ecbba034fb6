package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/piddle/internal/dynamo"
)

type ExportData struct {
	RunInfo
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   []dynamo.State     `json:"states"`
	Controls []dynamo.Control   `json:"controls"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes the full trajectory of a run as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *dynamo.Result) error {
	data := ExportData{
		RunInfo:  info,
		Steps:    result.StepsTaken,
		Times:    result.Times,
		States:   result.States,
		Controls: result.Controls,
		Metrics:  result.Metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
