// Package db provides the embedded default parts catalog.
package db

import _ "embed"

// DefaultCatalog is the JSON catalog loaded when no catalog file is configured.
//
//go:embed seed/parts.json
var DefaultCatalog []byte
