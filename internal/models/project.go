// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted domain records.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Project is a saved card set: the full editor snapshot at the moment
// of saving, plus enough metadata to list and reopen it.
type Project struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	SourceURL string          `json:"source_url"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
