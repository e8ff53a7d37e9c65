package tournamentdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a tournament is not found.
var ErrNotFound = errors.New("tournament not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new tournament repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) ListByGuild(ctx context.Context, db bun.IDB, guildID string) ([]*Tournament, error) {
	db = r.resolveDB(db)
	var rows []*Tournament
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		OrderExpr("position ASC, created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for guild %s: %w", guildID, err)
	}
	return rows, nil
}

func (r *Impl) Save(ctx context.Context, db bun.IDB, t *Tournament) error {
	db = r.resolveDB(db)
	t.UpdatedAt = time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}
	_, err := db.NewInsert().
		Model(t).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("name = EXCLUDED.name").
		Set("format = EXCLUDED.format").
		Set("scheduled_at = EXCLUDED.scheduled_at").
		Set("state = EXCLUDED.state").
		Set("remote_id = EXCLUDED.remote_id").
		Set("remote_url = EXCLUDED.remote_url").
		Set("roster = EXCLUDED.roster").
		Set("matches = EXCLUDED.matches").
		Set("selected = EXCLUDED.selected").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Tournament)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) SetSelected(ctx context.Context, db bun.IDB, guildID string, id *uuid.UUID) error {
	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*Tournament)(nil)).
		Where("guild_id = ?", guildID).
		Set("updated_at = ?", time.Now().UTC())
	if id == nil {
		q = q.Set("selected = FALSE")
	} else {
		q = q.Set("selected = (id = ?)", *id)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update selection for guild %s: %w", guildID, err)
	}
	return nil
}
