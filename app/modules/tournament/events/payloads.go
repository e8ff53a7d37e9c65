package tournamentevents

import "time"

// MemberV1 is one competitor as sent by the front end.
type MemberV1 struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TeamV1 lists a team's members. Order is for display only.
type TeamV1 []MemberV1

// Match results as numbered by the front end.
const (
	MatchResultDraw     = 0
	MatchResultTeam1Won = 1
	MatchResultTeam2Won = 2
)

// --- Requests ---

type TournamentCreateRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name"`
	// UTCTime is the start time as HHMM, e.g. 1600 for 4PM UTC.
	UTCTime uint16 `json:"utc_time"`
	// CalendarDate is DD/MM/YYYY, DD/MM, DD, empty for today, or free text like "next friday".
	CalendarDate string `json:"calendar_date,omitempty"`
	// Format links the tournament to a remote bracket when set, e.g. "single elimination".
	Format string `json:"format,omitempty"`
}

type TournamentListRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
}

type TournamentSelectRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	// Index is 1-based, as shown in the tournament list.
	Index int `json:"index"`
}

type ParticipantsRequestedPayloadV1 struct {
	GuildID string   `json:"guild_id"`
	Teams   []TeamV1 `json:"teams"`
}

// SelectedTournamentRequestedPayloadV1 is used by commands that act on the
// selected tournament without arguments (delete, start, rebuild).
type SelectedTournamentRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
}

type MatchStartRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	Team1   TeamV1 `json:"team1"`
	Team2   TeamV1 `json:"team2"`
	Force   bool   `json:"force,omitempty"`
}

type MatchReportRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	Team1   TeamV1 `json:"team1"`
	Team2   TeamV1 `json:"team2"`
	// Result is MatchResultTeam1Won, MatchResultTeam2Won or MatchResultDraw.
	Result  int    `json:"result"`
	Outcome *int   `json:"outcome,omitempty"`
	Scores  string `json:"scores,omitempty"`
}

type TournamentEndRequestedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	// Rankings lists teams from winner down. Unlisted teams stay unranked.
	Rankings []TeamV1 `json:"rankings,omitempty"`
}

// --- Results ---

// TournamentV1 summarises a tournament for display.
type TournamentV1 struct {
	ID          string    `json:"id"`
	Position    int       `json:"position"`
	Name        string    `json:"name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	TimeString  string    `json:"time_string"`
	State       string    `json:"state"`
	Format      string    `json:"format,omitempty"`
	URL         string    `json:"url,omitempty"`
	Selected    bool      `json:"selected"`
	Teams       []string  `json:"teams"`
	MatchCount  int       `json:"match_count"`
	Podium      []string  `json:"podium,omitempty"`
}

type TournamentPayloadV1 struct {
	GuildID    string       `json:"guild_id"`
	Tournament TournamentV1 `json:"tournament"`
	// RemoteWarning is set when the local change stuck but the bracket provider was not updated.
	RemoteWarning string `json:"remote_warning,omitempty"`
}

type TournamentListPayloadV1 struct {
	GuildID     string         `json:"guild_id"`
	Tournaments []TournamentV1 `json:"tournaments"`
}

// Participant change statuses.
const (
	ParticipantAdded     = "added"
	ParticipantRemoved   = "removed"
	ParticipantDuplicate = "duplicate"
	ParticipantNotFound  = "not_found"
	ParticipantInvalid   = "invalid"
)

type ParticipantChangeV1 struct {
	Team          string `json:"team"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	RemoteWarning string `json:"remote_warning,omitempty"`
}

type ParticipantsPayloadV1 struct {
	GuildID    string                `json:"guild_id"`
	Tournament TournamentV1          `json:"tournament"`
	Changes    []ParticipantChangeV1 `json:"changes"`
}

type MatchV1 struct {
	Team1   string `json:"team1"`
	Team2   string `json:"team2"`
	State   string `json:"state"`
	Winner  string `json:"winner,omitempty"`
	Outcome *int   `json:"outcome,omitempty"`
}

type MatchPayloadV1 struct {
	GuildID      string  `json:"guild_id"`
	TournamentID string  `json:"tournament_id"`
	Match        MatchV1 `json:"match"`
	// Draw is set when a drawn result was rated but not recorded in the bracket.
	Draw          bool   `json:"draw,omitempty"`
	RemoteWarning string `json:"remote_warning,omitempty"`
}

type TournamentEndedPayloadV1 struct {
	GuildID         string       `json:"guild_id"`
	Tournament      TournamentV1 `json:"tournament"`
	RemoteFinalized bool         `json:"remote_finalized"`
	RemoteWarning   string       `json:"remote_warning,omitempty"`
}

type TournamentFailedPayloadV1 struct {
	GuildID string `json:"guild_id"`
	Reason  string `json:"reason"`
}
