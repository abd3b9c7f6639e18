// Package history persists generation runs and navigation jumps per project.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run kinds.
const (
	KindGenerate = "generate"
	KindLoad     = "load"
)

// Store wraps DB operations for one project.
type Store struct {
	DB        *sql.DB
	ProjectID int64
}

// Run is one tag-file generation or load.
type Run struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Command   string        `json:"command,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Lines     int           `json:"lines"`
	Bytes     int64         `json:"bytes"`
	Error     string        `json:"error,omitempty"`
}

// Jump is a navigation target the user picked.
type Jump struct {
	ID       int64     `json:"id"`
	Query    string    `json:"query,omitempty"`
	Symbol   string    `json:"symbol"`
	Kind     string    `json:"kind,omitempty"`
	Path     string    `json:"path"`
	Line     int       `json:"line"`
	JumpedAt time.Time `json:"jumpedAt"`
}

// Open returns a Store for repoRoot, creating the project row on first use.
func Open(d *sql.DB, repoRoot string) (*Store, error) {
	var id int64
	err := d.QueryRow(`SELECT id FROM projects WHERE repo_root = ?`, repoRoot).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := d.Exec(`INSERT INTO projects (repo_root) VALUES (?)`, repoRoot)
		if err != nil {
			return nil, fmt.Errorf("insert project: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("project id: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup project: %w", err)
	}
	return &Store{DB: d, ProjectID: id}, nil
}

// RecordRun stores r, assigning a new ID when r.ID is empty, and returns the ID.
func (s *Store) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := s.DB.Exec(
		`INSERT INTO runs (id, project_id, kind, command, started_at, duration_ms, lines, bytes, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, s.ProjectID, r.Kind, r.Command, formatTime(r.StartedAt),
		r.Duration.Milliseconds(), r.Lines, r.Bytes, r.Error,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// RecordJump stores j and returns its row id.
func (s *Store) RecordJump(j Jump) (int64, error) {
	if j.JumpedAt.IsZero() {
		j.JumpedAt = time.Now()
	}
	res, err := s.DB.Exec(
		`INSERT INTO jumps (project_id, query, symbol, kind, path, line, jumped_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ProjectID, j.Query, j.Symbol, j.Kind, j.Path, j.Line, formatTime(j.JumpedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert jump: %w", err)
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.DB.Query(
		`SELECT id, kind, command, started_at, duration_ms, lines, bytes, error
		 FROM runs WHERE project_id = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		s.ProjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			started string
			ms      int64
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Command, &started, &ms, &r.Lines, &r.Bytes, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRun returns the newest run, or nil when none was recorded.
func (s *Store) LastRun() (*Run, error) {
	runs, err := s.RecentRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RecentJumps returns up to limit jumps, newest first.
func (s *Store) RecentJumps(limit int) ([]Jump, error) {
	rows, err := s.DB.Query(
		`SELECT id, query, symbol, kind, path, line, jumped_at
		 FROM jumps WHERE project_id = ? ORDER BY jumped_at DESC, id DESC LIMIT ?`,
		s.ProjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query jumps: %w", err)
	}
	defer rows.Close()

	var out []Jump
	for rows.Next() {
		var (
			j      Jump
			jumped string
		)
		if err := rows.Scan(&j.ID, &j.Query, &j.Symbol, &j.Kind, &j.Path, &j.Line, &jumped); err != nil {
			return nil, err
		}
		j.JumpedAt = parseTime(jumped)
		out = append(out, j)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
