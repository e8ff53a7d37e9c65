package tournamentdomain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unranked is the podium ranking of a team that has not been placed.
const Unranked uint32 = math.MaxUint32

// Member is a single competitor.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is one or more members entered together. Members are fixed at construction;
// Ranking and RemoteID are owned by the tournament holding the team and only change
// under that tournament's lock.
type Team struct {
	members  []Member
	Ranking  uint32
	RemoteID string
}

// NewTeam builds a team from the given members. Order is kept for display only.
func NewTeam(members ...Member) (*Team, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: a team needs at least one member", ErrInvalidRoster)
	}
	for i, m := range members {
		if strings.TrimSpace(m.ID) == "" {
			return nil, fmt.Errorf("%w: member %d has no id", ErrInvalidRoster, i+1)
		}
	}
	return &Team{
		members: append([]Member(nil), members...),
		Ranking: Unranked,
	}, nil
}

// MustTeam is NewTeam for fixed inputs; it panics on an invalid roster.
func MustTeam(members ...Member) *Team {
	t, err := NewTeam(members...)
	if err != nil {
		panic(err)
	}
	return t
}

// Members returns a copy of the team's members.
func (t *Team) Members() []Member {
	return append([]Member(nil), t.members...)
}

// Size returns the number of member entries, counting repeats.
func (t *Team) Size() int {
	return len(t.members)
}

// Equals reports whether both teams hold the same member ids with the same
// multiplicity, regardless of order.
func (t *Team) Equals(other *Team) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.members) != len(other.members) {
		return false
	}
	counts := make(map[string]int, len(t.members))
	for _, m := range t.members {
		counts[m.ID]++
	}
	for _, m := range other.members {
		if counts[m.ID] == 0 {
			return false
		}
		counts[m.ID]--
	}
	return true
}

// Contains reports whether the member id is on the team.
func (t *Team) Contains(memberID string) bool {
	for _, m := range t.members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// IsRanked reports whether a podium ranking has been assigned.
func (t *Team) IsRanked() bool {
	return t.Ranking != Unranked
}

// String joins the member display names.
func (t *Team) String() string {
	names := make([]string, len(t.members))
	for i, m := range t.members {
		if m.Name != "" {
			names[i] = m.Name
		} else {
			names[i] = m.ID
		}
	}
	return strings.Join(names, ", ")
}

// PodiumLabel renders the team with its placing, e.g. "2nd: alice, bob".
// Unranked teams render without a placing.
func (t *Team) PodiumLabel() string {
	if !t.IsRanked() {
		return t.String()
	}
	return Ordinal(t.Ranking) + ": " + t.String()
}

// Ordinal renders n with its English ordinal suffix.
func Ordinal(n uint32) string {
	return strconv.FormatUint(uint64(n), 10) + ordinalSuffix(n)
}

func ordinalSuffix(n uint32) string {
	if (n/10)%10 == 1 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// clone copies the team including its mutable fields.
func (t *Team) clone() *Team {
	c := *t
	c.members = append([]Member(nil), t.members...)
	return &c
}
