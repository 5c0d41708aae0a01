package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/presssim/internal/sim"
	"github.com/zhangjyr/gocsv"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// Store keeps one directory per run under baseDir.
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
	ID        string    `json:"id"`
	Material  string    `json:"material"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	ElasticModulus float64 `json:"elastic_modulus"`
	YieldStress    float64 `json:"yield_stress"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Depth          float64 `json:"depth"`

	Steps       int                `json:"steps"`
	Completed   bool               `json:"completed"`
	Message     string             `json:"message,omitempty"`
	Deformation float64            `json:"deformation"`
	PeakForce   float64            `json:"peak_force"`
	PeakStress  float64            `json:"peak_stress"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Sample is one row of samples.csv.
type Sample struct {
	Step        int     `csv:"step" json:"step"`
	Deformation float64 `csv:"deformation_mm" json:"deformation_mm"`
	Strain      float64 `csv:"strain" json:"strain"`
	Stress      float64 `csv:"stress_mpa" json:"stress_mpa"`
	Force       float64 `csv:"force_n" json:"force_n"`
	Height      float64 `csv:"height_mm" json:"height_mm"`
	Width       float64 `csv:"width_mm" json:"width_mm"`
	Depth       float64 `csv:"depth_mm" json:"depth_mm"`
	CrossheadY  float64 `csv:"crosshead_y" json:"crosshead_y"`
}

// Samples flattens the snapshots of a result into rows.
func Samples(result *sim.Result) []*Sample {
	rows := make([]*Sample, len(result.Snapshots))
	for i, snap := range result.Snapshots {
		rows[i] = &Sample{
			Step:        snap.Step,
			Deformation: snap.Deformation,
			Strain:      snap.Strain,
			Stress:      snap.Stress,
			Force:       snap.Force,
			Height:      snap.Height,
			Width:       snap.Width,
			Depth:       snap.Depth,
			CrossheadY:  snap.CrossheadY,
		}
	}
	return rows
}

func newRunID(material, kind string) string {
	name := strings.ReplaceAll(strings.ToLower(material), " ", "-")
	return fmt.Sprintf("%s_%s_%s", name, kind, uuid.NewString()[:8])
}

func (s *Store) Save(result *sim.Result) (string, error) {
	mat := result.Material
	runID := newRunID(mat.Name(), result.Kind.String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Material:       mat.Name(),
		Kind:           result.Kind.String(),
		Timestamp:      time.Now(),
		ElasticModulus: mat.ElasticModulus(),
		YieldStress:    mat.YieldStress(),
		Width:          mat.Width(),
		Height:         mat.Height(),
		Depth:          mat.Depth(),
		Steps:          result.StepsTaken,
		Completed:      result.Completed,
		Message:        result.Completion.Message,
		Deformation:    result.Last().Deformation,
		PeakForce:      result.Last().PeakForce,
		PeakStress:     result.Last().PeakStress,
		ElapsedMS:      result.Elapsed.Milliseconds(),
		Metrics:        result.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	rows := Samples(result)
	if len(rows) == 0 {
		return runID, nil
	}
	if err := gocsv.MarshalFile(&rows, csvFile); err != nil {
		return "", fmt.Errorf("write samples: %w", err)
	}

	return runID, nil
}

// List returns every readable run, oldest first. A missing base directory
// is an empty store.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
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

// LoadSamples reads the per-step rows of a run. A run saved without any
// steps has an empty file and yields no rows.
func (s *Store) LoadSamples(runID string) ([]*Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []*Sample{}, nil
	}

	rows := make([]*Sample, 0)
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("read samples of %s: %w", runID, err)
	}
	return rows, nil
}
