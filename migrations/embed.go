package migrations

import "embed"

// FS chứa các file SQL migration, đọc bởi golang-migrate qua iofs
//
//go:embed *.sql
var FS embed.FS
