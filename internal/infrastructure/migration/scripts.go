package migration

import "embed"

// Scripts holds the SQL migrations:
//
//	scripts/goose/<dialect>/NNNNN_name.sql           goose, one file per version
//	scripts/golang-migrate/mysql/NNNNNN_name.*.sql   golang-migrate up/down pairs
//
//go:embed scripts
var Scripts embed.FS

func gooseDir(driver string) string {
	return "scripts/goose/" + driver
}

const golangMigrateDir = "scripts/golang-migrate/mysql"
