package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournaments table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS tournaments (
					id UUID PRIMARY KEY,
					guild_id VARCHAR(20) NOT NULL,
					position INTEGER NOT NULL,
					name TEXT NOT NULL,
					format TEXT,
					scheduled_at TIMESTAMPTZ NOT NULL,
					state VARCHAR(16) NOT NULL,
					remote_id TEXT,
					remote_url TEXT,
					roster JSONB NOT NULL DEFAULT '[]'::jsonb,
					matches JSONB NOT NULL DEFAULT '[]'::jsonb,
					selected BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT tournaments_state_check CHECK (state IN ('pending', 'active', 'completed'))
				);
				CREATE INDEX IF NOT EXISTS idx_tournaments_guild_position ON tournaments(guild_id, position);
			`); err != nil {
				return fmt.Errorf("failed to create tournaments table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournaments table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS tournaments;`); err != nil {
				return fmt.Errorf("failed to drop tournaments table: %w", err)
			}
			return nil
		})
	})
}
