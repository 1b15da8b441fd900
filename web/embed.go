// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides the embedded browser client (HTML, CSS, JS).
// The client is a thin view over the JSON API: all editor state lives
// server-side, the browser renders projected card views and relays input.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree served at /.
//
//go:embed all:static
var StaticFS embed.FS
