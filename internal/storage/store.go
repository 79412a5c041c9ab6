package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/stardrop/internal/config"
	"github.com/san-kum/stardrop/internal/dynamo"
	"github.com/san-kum/stardrop/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	starsFile    = "stars.csv"
	timelineFile = "timeline.csv"
)

// Store keeps one directory per saved jar under baseDir.
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
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Capacity  int                `json:"capacity"`
	FrameDt   float64            `json:"frame_dt"`
	Frames    int                `json:"frames"`
	Stars     int                `json:"stars"`
	Settled   int                `json:"settled"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the metadata, the star snapshot and, when result is non-nil,
// the per-frame timeline. It returns the new run id.
func (s *Store) Save(cfg *config.Config, jar dynamo.Reader, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	stars := Snapshot(jar)
	meta := RunMetadata{
		ID:        runID,
		Name:      cfg.Name,
		Timestamp: now,
		Seed:      cfg.Seed,
		Capacity:  cfg.Capacity,
		FrameDt:   cfg.Scene.FrameDt,
		Stars:     len(stars),
		Metrics:   map[string]float64{},
	}
	for _, star := range stars {
		if star.Settled {
			meta.Settled++
		}
	}
	if result != nil {
		meta.Frames = result.Frames
		meta.Metrics = result.Metrics
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, starsFile), stars); err != nil {
		return "", fmt.Errorf("writing stars: %w", err)
	}
	if result != nil {
		if err := writeCSV(filepath.Join(runDir, timelineFile), timeline(result)); err != nil {
			return "", fmt.Errorf("writing timeline: %w", err)
		}
	}
	return runID, nil
}

// List returns saved runs, newest first. Directories without readable
// metadata are ignored.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
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

// LoadConfig returns the configuration the run was saved with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadStars(runID string) (Stars, error) {
	var stars Stars
	if err := readCSV(filepath.Join(s.baseDir, runID, starsFile), &stars); err != nil {
		return nil, err
	}
	return stars, nil
}

// LoadTimeline returns an empty slice for runs saved without a timeline.
func (s *Store) LoadTimeline(runID string) ([]TimelineRecord, error) {
	var records []TimelineRecord
	err := readCSV(filepath.Join(s.baseDir, runID, timelineFile), &records)
	if os.IsNotExist(err) {
		return []TimelineRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(records, f)
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return nil
		}
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
