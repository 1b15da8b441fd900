// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportEntry is one row of the export audit log.
type ExportEntry struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	CardID    string    `json:"card_id"`
	Format    string    `json:"format"`
	Bytes     int       `json:"bytes"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
