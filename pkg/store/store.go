// Package store persists projects and per-concept annotations in a local
// SQLite database. Annotation writes address concepts by name within a
// project; the writes survive across reloads and rebuilds of the graph.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

// Store is a read/write handle on the project database.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS concepts (
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	incoming   TEXT,
	outgoing   TEXT,
	notes      TEXT,
	confidence INTEGER,
	PRIMARY KEY (project_id, name)
);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveProject upserts a project and replaces its concept records. Existing
// annotations for concepts that still appear are preserved unless the
// incoming record carries its own annotation.
func (s *Store) SaveProject(p model.Project, records []model.RawConceptRecord) error {
	if p.ID == "" {
		return fmt.Errorf("project id is empty")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO projects (id, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title
	`, p.ID, p.Title, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}

	// Carry forward existing annotations for records that do not bring
	// their own.
	existing, err := loadAnnotations(tx, p.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM concepts WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear concepts: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO concepts (project_id, name, incoming, outgoing, notes, confidence)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			continue
		}
		notes := rec.Notes
		confidence := rec.Confidence
		if prev, ok := existing[rec.Name]; ok {
			if notes == "" {
				notes = prev.notes
			}
			if confidence == nil {
				confidence = prev.confidence
			}
		}
		incoming, err := json.Marshal(rec.Incoming)
		if err != nil {
			return fmt.Errorf("encode incoming for %s: %w", rec.Name, err)
		}
		outgoing, err := json.Marshal(rec.Outgoing)
		if err != nil {
			return fmt.Errorf("encode outgoing for %s: %w", rec.Name, err)
		}
		var notesArg any
		if notes != "" {
			notesArg = notes
		}
		var confArg any
		if confidence != nil {
			confArg = *confidence
		}
		if _, err := stmt.Exec(p.ID, rec.Name, string(incoming), string(outgoing), notesArg, confArg); err != nil {
			return fmt.Errorf("insert concept %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type annotation struct {
	notes      string
	confidence *int
}

func loadAnnotations(tx *sql.Tx, projectID string) (map[string]annotation, error) {
	rows, err := tx.Query(`SELECT name, notes, confidence FROM concepts WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]annotation)
	for rows.Next() {
		var name string
		var notes sql.NullString
		var confidence sql.NullInt64
		if err := rows.Scan(&name, &notes, &confidence); err != nil {
			continue
		}
		var a annotation
		if notes.Valid {
			a.notes = notes.String
		}
		if confidence.Valid {
			v := int(confidence.Int64)
			a.confidence = &v
		}
		out[name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annotations: %w", err)
	}
	return out, nil
}

// LoadProject returns the project row and its concept records.
func (s *Store) LoadProject(id string) (model.Project, []model.RawConceptRecord, error) {
	var p model.Project
	var createdAt sql.NullTime
	err := s.db.QueryRow(`SELECT id, title, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Title, &createdAt)
	if err == sql.ErrNoRows {
		return model.Project{}, nil, fmt.Errorf("project not found: %s", id)
	}
	if err != nil {
		return model.Project{}, nil, fmt.Errorf("load project: %w", err)
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}

	rows, err := s.db.Query(`
		SELECT name, incoming, outgoing, notes, confidence
		FROM concepts WHERE project_id = ? ORDER BY rowid
	`, id)
	if err != nil {
		return model.Project{}, nil, fmt.Errorf("load concepts: %w", err)
	}
	defer rows.Close()

	var records []model.RawConceptRecord
	for rows.Next() {
		var rec model.RawConceptRecord
		var incoming, outgoing, notes sql.NullString
		var confidence sql.NullInt64
		if err := rows.Scan(&rec.Name, &incoming, &outgoing, &notes, &confidence); err != nil {
			continue
		}
		if incoming.Valid {
			rec.Incoming = parseNameList(incoming.String)
		}
		if outgoing.Valid {
			rec.Outgoing = parseNameList(outgoing.String)
		}
		if notes.Valid {
			rec.Notes = notes.String
		}
		if confidence.Valid {
			v := int(confidence.Int64)
			rec.Confidence = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return model.Project{}, nil, fmt.Errorf("error iterating concepts: %w", err)
	}
	return p, records, nil
}

// ListProjects returns all stored projects, most recent first.
func (s *Store) ListProjects() ([]model.Project, error) {
	rows, err := s.db.Query(`SELECT id, title, created_at FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		var p model.Project
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Title, &createdAt); err != nil {
			continue
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return out, nil
}

// DeleteProject removes a project and its concepts.
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// UpdateTitle renames a project.
func (s *Store) UpdateTitle(id, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is empty")
	}
	res, err := s.db.Exec(`UPDATE projects SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// SetNotes writes the notes annotation for a concept. Empty notes clears the
// annotation.
func (s *Store) SetNotes(projectID, concept, notes string) error {
	var arg any
	if notes != "" {
		arg = notes
	}
	res, err := s.db.Exec(`
		UPDATE concepts SET notes = ? WHERE project_id = ? AND name = ?
	`, arg, projectID, concept)
	if err != nil {
		return fmt.Errorf("set notes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("concept not found: %s", concept)
	}
	return nil
}

// SetConfidence writes the mastery rating for a concept. Nil clears it;
// out-of-range values are rejected.
func (s *Store) SetConfidence(projectID, concept string, confidence *int) error {
	if !model.ValidConfidence(confidence) {
		return fmt.Errorf("confidence out of range: %d", *confidence)
	}
	var arg any
	if confidence != nil {
		arg = *confidence
	}
	res, err := s.db.Exec(`
		UPDATE concepts SET confidence = ? WHERE project_id = ? AND name = ?
	`, arg, projectID, concept)
	if err != nil {
		return fmt.Errorf("set confidence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("concept not found: %s", concept)
	}
	return nil
}

// parseNameList parses a JSON array of concept names, tolerating null and
// empty strings from older rows.
func parseNameList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
