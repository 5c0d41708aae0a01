package storage

import (
	"encoding/json"
	"io"

	"github.com/zhangjyr/gocsv"
)

// ExportData is the combined document written by ExportJSON.
type ExportData struct {
	RunMetadata
	Samples []*Sample `json:"samples"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples []*Sample) error {
	data := ExportData{
		RunMetadata: *meta,
		Samples:     samples,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(w io.Writer, samples []*Sample) error {
	return gocsv.Marshal(&samples, w)
}
