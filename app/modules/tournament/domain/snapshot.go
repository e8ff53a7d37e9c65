package tournamentdomain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TeamSnapshot is the stored form of a team.
type TeamSnapshot struct {
	Members  []Member `json:"members"`
	Ranking  uint32   `json:"ranking"`
	RemoteID string   `json:"remote_id,omitempty"`
}

// MatchSnapshot is the stored form of a match. Teams are stored inline because a
// match may outlive its teams' roster entries.
type MatchSnapshot struct {
	Team1    TeamSnapshot `json:"team1"`
	Team2    TeamSnapshot `json:"team2"`
	State    MatchState   `json:"state"`
	Winner   Side         `json:"winner"`
	Outcome  *int         `json:"outcome,omitempty"`
	RemoteID string       `json:"remote_id,omitempty"`
}

// TournamentSnapshot is a point-in-time copy of a tournament's entity graph.
type TournamentSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Format      string          `json:"format,omitempty"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	State       State           `json:"state"`
	Link        *RemoteLink     `json:"link,omitempty"`
	Roster      []TeamSnapshot  `json:"roster"`
	Matches     []MatchSnapshot `json:"matches"`
}

func snapshotTeam(t *Team) TeamSnapshot {
	return TeamSnapshot{
		Members:  t.Members(),
		Ranking:  t.Ranking,
		RemoteID: t.RemoteID,
	}
}

// Snapshot copies the tournament under its read lock.
func (t *Tournament) Snapshot() TournamentSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := TournamentSnapshot{
		ID:          t.id,
		Name:        t.name,
		Format:      t.format,
		ScheduledAt: t.schedule.At,
		State:       t.state,
		Roster:      make([]TeamSnapshot, len(t.roster)),
		Matches:     make([]MatchSnapshot, len(t.matches)),
	}
	if t.link != nil {
		link := *t.link
		s.Link = &link
	}
	for i, team := range t.roster {
		s.Roster[i] = snapshotTeam(team)
	}
	for i, m := range t.matches {
		ms := MatchSnapshot{
			Team1:    snapshotTeam(m.Team1),
			Team2:    snapshotTeam(m.Team2),
			State:    m.State,
			Winner:   m.Winner,
			RemoteID: m.RemoteID,
		}
		if m.Outcome != nil {
			o := *m.Outcome
			ms.Outcome = &o
		}
		s.Matches[i] = ms
	}
	return s
}

// RestoreTournament rebuilds a tournament from a snapshot. Match teams that are
// still on the roster are re-attached to their roster entries.
func RestoreTournament(s TournamentSnapshot, client BracketClient) (*Tournament, error) {
	switch s.State {
	case StatePending, StateActive, StateCompleted:
	default:
		return nil, fmt.Errorf("restore %s: %w: unknown state %q", s.ID, ErrInvalidTransition, s.State)
	}

	t := &Tournament{
		id:       s.ID,
		name:     s.Name,
		format:   s.Format,
		schedule: Schedule{At: s.ScheduledAt.UTC()},
		state:    s.State,
		client:   client,
	}
	if t.id == uuid.Nil {
		t.id = uuid.New()
	}
	if s.Link != nil {
		link := *s.Link
		t.link = &link
	}

	for _, ts := range s.Roster {
		team, err := restoreTeam(ts)
		if err != nil {
			return nil, fmt.Errorf("restore %s roster: %w", s.ID, err)
		}
		if _, dup := t.findTeam(team); dup != nil {
			return nil, fmt.Errorf("restore %s roster: %w: %s", s.ID, ErrDuplicateTeam, team)
		}
		t.roster = append(t.roster, team)
	}

	for i, ms := range s.Matches {
		team1, err := t.attachTeam(ms.Team1)
		if err != nil {
			return nil, fmt.Errorf("restore %s match %d: %w", s.ID, i+1, err)
		}
		team2, err := t.attachTeam(ms.Team2)
		if err != nil {
			return nil, fmt.Errorf("restore %s match %d: %w", s.ID, i+1, err)
		}
		m := &Match{
			Team1:    team1,
			Team2:    team2,
			State:    ms.State,
			Winner:   ms.Winner,
			RemoteID: ms.RemoteID,
		}
		if ms.Outcome != nil {
			o := *ms.Outcome
			m.Outcome = &o
		}
		t.matches = append(t.matches, m)
	}
	return t, nil
}

func restoreTeam(ts TeamSnapshot) (*Team, error) {
	team, err := NewTeam(ts.Members...)
	if err != nil {
		return nil, err
	}
	team.Ranking = ts.Ranking
	team.RemoteID = ts.RemoteID
	return team, nil
}

func (t *Tournament) attachTeam(ts TeamSnapshot) (*Team, error) {
	team, err := restoreTeam(ts)
	if err != nil {
		return nil, err
	}
	if _, entry := t.findTeam(team); entry != nil {
		return entry, nil
	}
	return team, nil
}
