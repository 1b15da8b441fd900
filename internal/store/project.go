// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements database access for saved projects and the
// export audit log.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"cardstudio/internal/models"
)

// ProjectStore handles all project-related database operations.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// projectColumns lists the columns selected in project queries.
const projectColumns = `id, session_id, title, source_url, snapshot, created_at, updated_at`

// scanProject scans a project row from the result set.
func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	var snapshot []byte
	err := scanner.Scan(
		&p.ID, &p.SessionID, &p.Title, &p.SourceURL, &snapshot,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Snapshot = json.RawMessage(snapshot)
	return &p, nil
}

// Create inserts a new project and returns it with the generated ID.
func (s *ProjectStore) Create(p *models.Project) (*models.Project, error) {
	err := s.db.QueryRow(`
		INSERT INTO projects (session_id, title, source_url, snapshot)
		VALUES ($1, $2, $3, $4)
		RETURNING `+projectColumns,
		p.SessionID, p.Title, p.SourceURL, []byte(p.Snapshot),
	).Scan(
		&p.ID, &p.SessionID, &p.Title, &p.SourceURL, (*[]byte)(&p.Snapshot),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// FindByID retrieves a single project by its UUID. Returns nil when the
// project does not exist.
func (s *ProjectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// ListBySession returns a session's saved projects, newest first.
func (s *ProjectStore) ListBySession(sessionID string, limit, offset int) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE session_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Update replaces a project's title and snapshot.
func (s *ProjectStore) Update(id uuid.UUID, title string, snapshot json.RawMessage) (*models.Project, error) {
	row := s.db.QueryRow(`
		UPDATE projects
		SET title = $2, snapshot = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+projectColumns,
		id, title, []byte(snapshot),
	)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a project, scoped to its owning session.
func (s *ProjectStore) Delete(id uuid.UUID, sessionID string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = $1 AND session_id = $2`, id, sessionID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
