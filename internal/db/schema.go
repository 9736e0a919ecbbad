package db

import (
	"context"
	"database/sql"
	"fmt"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    %[2]s text PRIMARY KEY,
    %[3]s bytea NOT NULL,
    %[4]s bigint NOT NULL
);

CREATE INDEX IF NOT EXISTS %[1]s_%[4]s_idx
ON %[1]s (%[4]s);
`

// EnsureSessionSchema creates the session table if it does not already exist.
// The store itself never touches schema; this runs once at server startup.
// Identifier validation happens in config.Validate before the names reach
// this template.
func EnsureSessionSchema(ctx context.Context, db *sql.DB, table, keyColumn, dataColumn, expirationColumn string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(sessionSchema, table, keyColumn, dataColumn, expirationColumn))
	return err
}
