package tournamentdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for tournament persistence.
type Repository interface {
	// ListByGuild returns a guild's tournaments ordered by position.
	ListByGuild(ctx context.Context, db bun.IDB, guildID string) ([]*Tournament, error)

	// Save inserts or replaces a tournament row.
	Save(ctx context.Context, db bun.IDB, t *Tournament) error

	// Delete removes a tournament. Returns ErrNotFound if no row matched.
	Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// SetSelected marks one tournament of the guild as selected and clears the
	// rest. A nil id clears the selection.
	SetSelected(ctx context.Context, db bun.IDB, guildID string, id *uuid.UUID) error
}
