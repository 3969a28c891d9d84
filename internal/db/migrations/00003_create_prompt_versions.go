package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePromptVersions, downCreatePromptVersions)
}

// upCreatePromptVersions creates prompt_versions, which stores whole template
// snapshots: MEDIUMTEXT on MySQL, TIMESTAMPTZ on postgres.
func upCreatePromptVersions(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS prompt_versions (
    prompt_id  VARCHAR(36)  NOT NULL,
    version    INTEGER      NOT NULL,
    title      VARCHAR(255) NOT NULL,
    body       TEXT         NOT NULL,
    created_at TIMESTAMPTZ  NOT NULL,
    PRIMARY KEY (prompt_id, version)
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS prompt_versions (
    prompt_id  VARCHAR(36)  NOT NULL,
    version    INT          NOT NULL,
    title      VARCHAR(255) NOT NULL,
    body       MEDIUMTEXT   NOT NULL,
    created_at TIMESTAMP(6) NOT NULL,
    PRIMARY KEY (prompt_id, version)
)`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS prompt_versions (
    prompt_id  TEXT      NOT NULL,
    version    INTEGER   NOT NULL,
    title      TEXT      NOT NULL,
    body       TEXT      NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (prompt_id, version)
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create prompt_versions table: %w", err)
	}
	return nil
}

func downCreatePromptVersions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS prompt_versions`)
	return err
}
