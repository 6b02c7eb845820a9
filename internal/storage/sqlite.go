package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/san-kum/phsim/internal/chem"
)

// SQLiteStore keeps every run as one row of JSON blobs.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "runs.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		metadata BLOB NOT NULL,
		curve BLOB NOT NULL
	)`); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(run *Run) (string, error) {
	prepare(run)
	meta, err := json.Marshal(run.Meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	curve, err := json.Marshal(run.Curve)
	if err != nil {
		return "", fmt.Errorf("encode curve: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO runs (id, created_at, metadata, curve) VALUES (?, ?, ?, ?)`,
		run.Meta.ID, run.Meta.Timestamp.UnixNano(), meta, curve,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.Meta.ID, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT metadata FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var meta RunMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := s.loadColumn(runID, "metadata", &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadCurve(runID string) ([]chem.CurvePoint, error) {
	curve := []chem.CurvePoint{}
	if err := s.loadColumn(runID, "curve", &curve); err != nil {
		return nil, err
	}
	return curve, nil
}

func (s *SQLiteStore) loadColumn(runID, column string, dst any) error {
	var payload []byte
	err := s.db.QueryRow(`SELECT `+column+` FROM runs WHERE id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", column, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}
