//go:build integration

package tournamentintegrationtests

import (
	"context"
	"testing"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(guildID string, position int, name string) *tournamentdb.Tournament {
	return tournamentdb.FromSnapshot(guildID, position, false, tournamentdomain.TournamentSnapshot{
		ID:          uuid.New(),
		Name:        name,
		ScheduledAt: time.Date(2030, 10, 23, 16, 0, 0, 0, time.UTC),
		State:       tournamentdomain.StatePending,
		Roster: []tournamentdomain.TeamSnapshot{
			{Members: []tournamentdomain.Member{{ID: "1", Name: "alice"}, {ID: "2", Name: "bob"}}, RemoteID: "77"},
		},
	})
}

func TestRepository_SaveAndList(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := tournamentdb.NewRepository(testDB)

	first := row("g1", 1, "Friday Cup")
	first.RemoteID = "4211"
	first.RemoteURL = "https://challonge.com/friday_cup"
	second := row("g1", 2, "Saturday Cup")
	other := row("g2", 1, "Elsewhere")

	for _, r := range []*tournamentdb.Tournament{second, first, other} {
		require.NoError(t, repo.Save(ctx, nil, r))
	}

	rows, err := repo.ListByGuild(ctx, nil, "g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Friday Cup", rows[0].Name)
	assert.Equal(t, "Saturday Cup", rows[1].Name)

	if diff := cmp.Diff(first.Snapshot(), rows[0].Snapshot(), cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// Upsert keeps one row per id.
	first.State = string(tournamentdomain.StateActive)
	first.Position = 3
	require.NoError(t, repo.Save(ctx, nil, first))
	rows, err = repo.ListByGuild(ctx, nil, "g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Friday Cup", rows[1].Name)
	assert.Equal(t, "active", rows[1].State)
}

func TestRepository_SetSelectedAndDelete(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := tournamentdb.NewRepository(testDB)

	a := row("g1", 1, "A")
	b := row("g1", 2, "B")
	require.NoError(t, repo.Save(ctx, nil, a))
	require.NoError(t, repo.Save(ctx, nil, b))

	require.NoError(t, repo.SetSelected(ctx, nil, "g1", &b.ID))
	rows, err := repo.ListByGuild(ctx, nil, "g1")
	require.NoError(t, err)
	assert.False(t, rows[0].Selected)
	assert.True(t, rows[1].Selected)

	require.NoError(t, repo.SetSelected(ctx, nil, "g1", nil))
	rows, err = repo.ListByGuild(ctx, nil, "g1")
	require.NoError(t, err)
	assert.False(t, rows[1].Selected)

	require.NoError(t, repo.Delete(ctx, nil, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, nil, a.ID), tournamentdb.ErrNotFound)

	rows, err = repo.ListByGuild(ctx, nil, "g1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)
}
