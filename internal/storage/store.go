// Package storage persists titration runs: their metadata and sampled curve.
package storage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/phsim/internal/chem"
)

const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

type RunMetadata struct {
	ID                string             `json:"id"`
	Substance         string             `json:"substance"`
	Type              string             `json:"type"`
	Mode              string             `json:"mode"`
	Timestamp         time.Time          `json:"timestamp"`
	Seed              int64              `json:"seed"`
	Molarity          float64            `json:"molarity"`
	BeakerVolume      float64            `json:"beaker_volume"`
	TitrantMolarity   float64            `json:"titrant_molarity"`
	MaxVolume         float64            `json:"max_volume"`
	EquivalenceVolume float64            `json:"equivalence_volume"`
	Samples           int                `json:"samples"`
	Metrics           map[string]float64 `json:"metrics"`
}

type Run struct {
	Meta  RunMetadata
	Curve []chem.CurvePoint
}

type Store interface {
	Init() error
	// Save stores run and returns its id, assigning one (and a timestamp)
	// when the metadata has none.
	Save(run *Run) (string, error)
	// List returns every run's metadata, oldest first.
	List() ([]RunMetadata, error)
	Load(id string) (*RunMetadata, error)
	LoadCurve(id string) ([]chem.CurvePoint, error)
	Close() error
}

// Open returns the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFS:
		return NewFileStore(dir), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "runs.db"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

func Backends() []string { return []string{BackendFS, BackendSQLite} }

func prepare(run *Run) {
	if run.Meta.ID == "" {
		run.Meta.ID = fmt.Sprintf("%s_%s", run.Meta.Substance, uuid.NewString()[:8])
	}
	if run.Meta.Timestamp.IsZero() {
		run.Meta.Timestamp = time.Now()
	}
	if run.Meta.Samples == 0 {
		run.Meta.Samples = len(run.Curve)
	}
	if run.Meta.Metrics == nil {
		run.Meta.Metrics = map[string]float64{}
	}
}

func sortRuns(runs []RunMetadata) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
}
