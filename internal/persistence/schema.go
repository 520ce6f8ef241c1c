package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// schemaStatements create the ticket table and its secondary indexes. Each
// statement is create-if-absent so the set is safe to run on every startup.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{
		name: "create_tickets_table",
		sql: `CREATE TABLE IF NOT EXISTS tickets (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			severity TEXT NOT NULL DEFAULT 'low',
			status TEXT NOT NULL DEFAULT 'open',
			customer_id BIGINT,
			assigned_to TEXT,
			resolution_time_minutes INTEGER CHECK (resolution_time_minutes >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		name: "create_status_index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status)`,
	},
	{
		name: "create_severity_index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_tickets_severity ON tickets(severity)`,
	},
}

// InitSchema applies the idempotent schema statements.
func InitSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return fmt.Errorf("no postgres pool available")
	}

	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("apply %s: %w", stmt.name, err)
		}
	}

	logger.Info("schema validated", zap.Int("statements", len(schemaStatements)))
	return nil
}
