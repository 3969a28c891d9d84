// Package migrations holds the goose migrations for joe-prompts. SQL files
// cover the portable schema; Go files cover DDL whose column types differ
// between sqlite, mysql and postgres.
package migrations

// dialect names the goose dialect of the database being migrated.
var dialect = "sqlite3"

// SetDialect records the goose dialect ("sqlite3", "mysql" or "postgres")
// used by the Go migrations. The db package calls it before goose.Up.
// Unknown values get the sqlite DDL.
func SetDialect(d string) {
	dialect = d
}
