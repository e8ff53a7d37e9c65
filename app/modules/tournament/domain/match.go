package tournamentdomain

import "fmt"

// MatchState is the progress of a match.
type MatchState string

const (
	MatchNotStarted MatchState = "not_started"
	MatchUnderway   MatchState = "underway"
	MatchFinished   MatchState = "finished"
)

// Side identifies one of the two teams in a match.
type Side int

const (
	SideNone Side = iota
	SideTeam1
	SideTeam2
)

func (s Side) String() string {
	switch s {
	case SideTeam1:
		return "team1"
	case SideTeam2:
		return "team2"
	default:
		return "none"
	}
}

// Match is a pairing between two roster teams.
type Match struct {
	Team1    *Team
	Team2    *Team
	State    MatchState
	Winner   Side
	Outcome  *int
	RemoteID string
}

// MatchResult is a decided, non-draw match to record.
type MatchResult struct {
	Winner *Team
	Loser  *Team
	// Outcome is an optional numeric result (score margin, ranking) forwarded as-is.
	Outcome *int
	// Scores is an optional provider score string such as "3-1".
	Scores string
}

// Involves reports whether team plays in this match.
func (m *Match) Involves(team *Team) bool {
	return m.Team1.Equals(team) || m.Team2.Equals(team)
}

// Between reports whether the match pairs a and b in either order.
func (m *Match) Between(a, b *Team) bool {
	return (m.Team1.Equals(a) && m.Team2.Equals(b)) || (m.Team1.Equals(b) && m.Team2.Equals(a))
}

// SideOf returns which side team plays on.
func (m *Match) SideOf(team *Team) Side {
	switch {
	case m.Team1.Equals(team):
		return SideTeam1
	case m.Team2.Equals(team):
		return SideTeam2
	default:
		return SideNone
	}
}

// WinningTeam returns the winner of a finished match, or nil.
func (m *Match) WinningTeam() *Team {
	switch m.Winner {
	case SideTeam1:
		return m.Team1
	case SideTeam2:
		return m.Team2
	default:
		return nil
	}
}

func (m *Match) String() string {
	return fmt.Sprintf("%s vs %s", m.Team1, m.Team2)
}

// copyMatch returns a detached copy whose teams are clones, safe to hand out
// after the tournament lock is released.
func copyMatch(m *Match) Match {
	c := *m
	c.Team1 = m.Team1.clone()
	c.Team2 = m.Team2.clone()
	if m.Outcome != nil {
		o := *m.Outcome
		c.Outcome = &o
	}
	return c
}
