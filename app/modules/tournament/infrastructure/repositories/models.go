package tournamentdb

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament is one guild tournament. The roster and match log are stored as
// JSONB snapshots; teams inside matches are stored inline.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID          uuid.UUID                        `bun:"id,pk,type:uuid"`
	GuildID     string                           `bun:"guild_id,notnull,type:varchar(20)"`
	Position    int                              `bun:"position,notnull"`
	Name        string                           `bun:"name,notnull"`
	Format      string                           `bun:"format,nullzero"`
	ScheduledAt time.Time                        `bun:"scheduled_at,notnull"`
	State       string                           `bun:"state,notnull,type:varchar(16)"`
	RemoteID    string                           `bun:"remote_id,nullzero"`
	RemoteURL   string                           `bun:"remote_url,nullzero"`
	Roster      []tournamentdomain.TeamSnapshot  `bun:"roster,type:jsonb,notnull"`
	Matches     []tournamentdomain.MatchSnapshot `bun:"matches,type:jsonb,notnull"`
	Selected    bool                             `bun:"selected,notnull,default:false"`
	CreatedAt   time.Time                        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time                        `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// FromSnapshot builds a row for a tournament at a 1-based position.
func FromSnapshot(guildID string, position int, selected bool, s tournamentdomain.TournamentSnapshot) *Tournament {
	row := &Tournament{
		ID:          s.ID,
		GuildID:     guildID,
		Position:    position,
		Name:        s.Name,
		Format:      s.Format,
		ScheduledAt: s.ScheduledAt.UTC(),
		State:       string(s.State),
		Roster:      s.Roster,
		Matches:     s.Matches,
		Selected:    selected,
	}
	if s.Link != nil {
		row.RemoteID = s.Link.TournamentID
		row.RemoteURL = s.Link.URL
		if s.Link.Format != "" {
			row.Format = s.Link.Format
		}
	}
	if row.Roster == nil {
		row.Roster = []tournamentdomain.TeamSnapshot{}
	}
	if row.Matches == nil {
		row.Matches = []tournamentdomain.MatchSnapshot{}
	}
	return row
}

// Snapshot converts the row back into the domain's stored form.
func (t *Tournament) Snapshot() tournamentdomain.TournamentSnapshot {
	s := tournamentdomain.TournamentSnapshot{
		ID:          t.ID,
		Name:        t.Name,
		Format:      t.Format,
		ScheduledAt: t.ScheduledAt.UTC(),
		State:       tournamentdomain.State(t.State),
		Roster:      t.Roster,
		Matches:     t.Matches,
	}
	if t.RemoteID != "" {
		s.Link = &tournamentdomain.RemoteLink{
			TournamentID: t.RemoteID,
			Format:       t.Format,
			URL:          t.RemoteURL,
		}
	}
	return s
}
