// Package migrations встраивает SQL-миграции схемы игрового сервиса.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
