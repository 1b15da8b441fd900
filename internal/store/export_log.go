// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// export_log.go records finished exports for audit and usage insight.
// Writes are best-effort: a full card export must never fail because
// the log insert did.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cardstudio/internal/export"
	"cardstudio/internal/models"
)

// ExportLogStore handles export audit log operations.
type ExportLogStore struct {
	db *sql.DB
}

// NewExportLogStore creates a new ExportLogStore.
func NewExportLogStore(db *sql.DB) *ExportLogStore {
	return &ExportLogStore{db: db}
}

// Record inserts one export entry. Implements export.Recorder.
func (s *ExportLogStore) Record(ctx context.Context, rec export.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO export_log (session_id, card_id, format, bytes, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.SessionID, string(rec.CardID), string(rec.Format), rec.Bytes, rec.URL, rec.CreatedAt)
	if err != nil {
		// Log but don't fail — export logging is best-effort.
		slog.Warn("failed to log export",
			"card", rec.CardID,
			"format", rec.Format,
			"error", err,
		)
		return fmt.Errorf("log export: %w", err)
	}
	return nil
}

// ListBySession returns a session's export history, newest first.
func (s *ExportLogStore) ListBySession(sessionID string, limit int) ([]models.ExportEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, card_id, format, bytes, url, created_at
		FROM export_log
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var items []models.ExportEntry
	for rows.Next() {
		var e models.ExportEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.CardID, &e.Format, &e.Bytes, &e.URL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export entry: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// Prune deletes entries older than the retention window and returns how
// many were removed.
func (s *ExportLogStore) Prune(olderThan time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM export_log WHERE created_at < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("prune export log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
