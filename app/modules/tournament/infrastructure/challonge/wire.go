package challonge

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
)

// Challonge wraps every resource in an object named after its type, e.g.
// {"tournament": {...}}. Ids are integers.

type errorBody struct {
	Errors []string `json:"errors"`
}

type tournamentEnvelope struct {
	Tournament tournamentBody `json:"tournament"`
}

type tournamentBody struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name"`
	URL              string                `json:"url"`
	FullChallongeURL string                `json:"full_challonge_url"`
	TournamentType   string                `json:"tournament_type"`
	State            string                `json:"state"`
	Participants     []participantEnvelope `json:"participants,omitempty"`
	Matches          []matchEnvelope       `json:"matches,omitempty"`
}

type participantEnvelope struct {
	Participant participantBody `json:"participant"`
}

type participantBody struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Misc      string  `json:"misc"`
	FinalRank *uint32 `json:"final_rank"`
}

type matchEnvelope struct {
	Match matchBody `json:"match"`
}

type matchBody struct {
	ID         int64      `json:"id"`
	Player1ID  *int64     `json:"player1_id"`
	Player2ID  *int64     `json:"player2_id"`
	WinnerID   *int64     `json:"winner_id"`
	State      string     `json:"state"`
	UnderwayAt *time.Time `json:"underway_at"`
	ScoresCSV  string     `json:"scores_csv"`
}

// participantMisc is stored in the participant's misc field so the members of a
// team survive a round trip through the provider.
type participantMisc struct {
	Members []tournamentdomain.Member `json:"members"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return formatID(*id)
}

func (t tournamentBody) remote() tournamentdomain.RemoteTournament {
	u := t.FullChallongeURL
	if u == "" && t.URL != "" {
		u = "https://challonge.com/" + t.URL
	}
	return tournamentdomain.RemoteTournament{ID: formatID(t.ID), URL: u}
}

// members recovers a participant's team. Participants created elsewhere have no
// misc payload; their display name is split on commas instead.
func (p participantBody) members() []tournamentdomain.Member {
	var misc participantMisc
	if p.Misc != "" && json.Unmarshal([]byte(p.Misc), &misc) == nil && len(misc.Members) > 0 {
		return misc.Members
	}
	var out []tournamentdomain.Member
	for _, part := range strings.Split(p.Name, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		out = append(out, tournamentdomain.Member{ID: name, Name: name})
	}
	return out
}

func (t tournamentBody) state() tournamentdomain.RemoteState {
	state := tournamentdomain.RemoteState{
		Participants: make([]tournamentdomain.RemoteParticipant, 0, len(t.Participants)),
		Matches:      make([]tournamentdomain.RemoteMatch, 0, len(t.Matches)),
	}
	for _, env := range t.Participants {
		p := env.Participant
		rp := tournamentdomain.RemoteParticipant{
			ID:      formatID(p.ID),
			Name:    p.Name,
			Members: p.members(),
		}
		if p.FinalRank != nil {
			rp.FinalRank = *p.FinalRank
		}
		state.Participants = append(state.Participants, rp)
	}
	for _, env := range t.Matches {
		m := env.Match
		state.Matches = append(state.Matches, tournamentdomain.RemoteMatch{
			ID:         formatID(m.ID),
			Player1ID:  optionalID(m.Player1ID),
			Player2ID:  optionalID(m.Player2ID),
			WinnerID:   optionalID(m.WinnerID),
			State:      m.State,
			UnderwayAt: m.UnderwayAt,
			ScoresCSV:  m.ScoresCSV,
		})
	}
	return state
}
