package state

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// State is the persisted record of prior runs: the last successful run
// timestamp per mode and every assignment ID ever observed. It is loaded
// once at process start and written back once at process end.
type State struct {
	LastMorningRun *time.Time
	LastEveningRun *time.Time
	Seen           map[string]SeenAssignment
}

type SeenAssignment struct {
	ID        string
	Name      string
	Course    string
	DueAt     *time.Time
	FirstSeen time.Time
}

// MarkSeen records an assignment ID if it has not been observed before.
// Existing entries are never touched; the history is append-only.
func (s *State) MarkSeen(id, name, course string, dueAt *time.Time, now time.Time) {
	if s.Seen == nil {
		s.Seen = make(map[string]SeenAssignment)
	}
	if _, ok := s.Seen[id]; ok {
		return
	}
	s.Seen[id] = SeenAssignment{
		ID:        id,
		Name:      name,
		Course:    course,
		DueAt:     dueAt,
		FirstSeen: now,
	}
}

// SeenIDs returns the seen mapping as a membership set.
func (s State) SeenIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Seen))
	for id := range s.Seen {
		ids[id] = true
	}
	return ids
}

type Store struct {
	sql *sql.DB
}

func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  mode        TEXT PRIMARY KEY CHECK (mode IN ('morning','evening')),
  last_run_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS seen_assignments (
  assignment_id TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  course        TEXT NOT NULL,
  due_at        TEXT,
  first_seen_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seen_first_seen ON seen_assignments(first_seen_at);
	`); err != nil {
		return nil, err
	}
	return &Store{sql: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

// Load reads the full state. A fresh database yields empty defaults.
func (s *Store) Load(ctx context.Context) (State, error) {
	st := State{Seen: make(map[string]SeenAssignment)}

	rows, err := s.sql.QueryContext(ctx, "SELECT mode, last_run_at FROM runs")
	if err != nil {
		return State{}, err
	}
	for rows.Next() {
		var mode, at string
		if err := rows.Scan(&mode, &at); err != nil {
			rows.Close()
			return State{}, err
		}
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			continue
		}
		switch mode {
		case "morning":
			st.LastMorningRun = &t
		case "evening":
			st.LastEveningRun = &t
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return State{}, err
	}
	if err := rows.Close(); err != nil {
		return State{}, err
	}

	rows, err = s.sql.QueryContext(ctx, "SELECT assignment_id, name, course, due_at, first_seen_at FROM seen_assignments")
	if err != nil {
		return State{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sa SeenAssignment
		var dueAt sql.NullString
		var firstSeen string
		if err := rows.Scan(&sa.ID, &sa.Name, &sa.Course, &dueAt, &firstSeen); err != nil {
			return State{}, err
		}
		if dueAt.Valid {
			if t, err := time.Parse(time.RFC3339, dueAt.String); err == nil {
				sa.DueAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339, firstSeen); err == nil {
			sa.FirstSeen = t
		}
		st.Seen[sa.ID] = sa
	}
	if err := rows.Err(); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save writes the state back in one transaction. Seen rows already present
// are left untouched so first_seen_at survives every later run.
func (s *Store) Save(ctx context.Context, st State) (err error) {
	tx, err := s.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for mode, at := range map[string]*time.Time{
		"morning": st.LastMorningRun,
		"evening": st.LastEveningRun,
	} {
		if at == nil {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs(mode, last_run_at) VALUES(?, ?)
			 ON CONFLICT(mode) DO UPDATE SET last_run_at = excluded.last_run_at`,
			mode, at.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	for _, sa := range st.Seen {
		var dueAt interface{}
		if sa.DueAt != nil {
			dueAt = sa.DueAt.Format(time.RFC3339)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_assignments(assignment_id, name, course, due_at, first_seen_at) VALUES(?,?,?,?,?)`,
			sa.ID, sa.Name, sa.Course, dueAt, sa.FirstSeen.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentSeen returns the most recently first-seen assignments.
func (s *Store) RecentSeen(ctx context.Context, limit int) ([]SeenAssignment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sql.QueryContext(ctx,
		"SELECT assignment_id, name, course, due_at, first_seen_at FROM seen_assignments ORDER BY first_seen_at DESC, assignment_id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeenAssignment
	for rows.Next() {
		var sa SeenAssignment
		var dueAt sql.NullString
		var firstSeen string
		if err := rows.Scan(&sa.ID, &sa.Name, &sa.Course, &dueAt, &firstSeen); err != nil {
			return nil, err
		}
		if dueAt.Valid {
			if t, err := time.Parse(time.RFC3339, dueAt.String); err == nil {
				sa.DueAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339, firstSeen); err == nil {
			sa.FirstSeen = t
		}
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
