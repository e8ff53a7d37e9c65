package tournamentdomain

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// State is a tournament's lifecycle stage.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateCompleted State = "completed"
)

var errNoBracketClient = errors.New("no bracket client configured")

// Tournament owns a roster of teams, a log of matches and an optional link to a
// remote bracket. Local state is authoritative: remote calls are made after the
// local change, outside the lock, and their failures are reported but never undo it.
type Tournament struct {
	mu sync.RWMutex

	id       uuid.UUID
	name     string
	format   string
	schedule Schedule
	state    State
	roster   []*Team
	matches  []*Match
	link     *RemoteLink
	client   BracketClient
}

// New creates a pending, unlinked tournament.
func New(name string, schedule Schedule) *Tournament {
	return &Tournament{
		id:       uuid.New(),
		name:     name,
		schedule: schedule,
		state:    StatePending,
	}
}

func (t *Tournament) ID() uuid.UUID { return t.id }

func (t *Tournament) Name() string { return t.name }

func (t *Tournament) Schedule() Schedule { return t.schedule }

// TimeString renders the scheduled start.
func (t *Tournament) TimeString() string {
	return t.schedule.String()
}

func (t *Tournament) Format() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.format
}

func (t *Tournament) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Link returns the remote bracket link, if any.
func (t *Tournament) Link() (RemoteLink, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.link == nil {
		return RemoteLink{}, false
	}
	return *t.link, true
}

func (t *Tournament) IsLinked() bool {
	_, ok := t.Link()
	return ok
}

// UseBracketClient sets the client used for a linked tournament, e.g. after a restore.
func (t *Tournament) UseBracketClient(client BracketClient) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = client
}

// Roster returns copies of the entered teams in entry order.
func (t *Tournament) Roster() []*Team {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Team, len(t.roster))
	for i, team := range t.roster {
		out[i] = team.clone()
	}
	return out
}

// Matches returns copies of the match log in creation order.
func (t *Tournament) Matches() []Match {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Match, len(t.matches))
	for i, m := range t.matches {
		out[i] = copyMatch(m)
	}
	return out
}

// HasTeam reports whether a team equal to the given one is entered.
func (t *Tournament) HasTeam(team *Team) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, entry := t.findTeam(team)
	return entry != nil
}

// Podium returns the ranked teams ordered by placing.
func (t *Tournament) Podium() []*Team {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var ranked []*Team
	for _, team := range t.roster {
		if team.IsRanked() {
			ranked = append(ranked, team.clone())
		}
	}
	slices.SortStableFunc(ranked, func(a, b *Team) int {
		return cmp.Compare(a.Ranking, b.Ranking)
	})
	return ranked
}

// LinkRemote creates the bracket on the provider and links it. Nothing is stored
// if the provider call fails.
func (t *Tournament) LinkRemote(ctx context.Context, client BracketClient, format string) (RemoteLink, error) {
	if client == nil {
		return RemoteLink{}, NewRemoteUnavailable("CreateTournament", errNoBracketClient)
	}
	if t.IsLinked() {
		return RemoteLink{}, fmt.Errorf("%w: tournament %q is already linked", ErrInvalidTransition, t.name)
	}

	remote, err := client.CreateTournament(ctx, t.name, format)
	if err != nil {
		return RemoteLink{}, asRemoteError("CreateTournament", err)
	}

	link := RemoteLink{TournamentID: remote.ID, Format: format, URL: remote.URL}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.link = &link
	t.format = format
	t.client = client
	return link, nil
}

// Start moves a pending tournament to active.
func (t *Tournament) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePending {
		return fmt.Errorf("%w: cannot start a %s tournament", ErrInvalidTransition, t.state)
	}
	t.state = StateActive
	return nil
}

// remoteTarget must be called with t.mu held.
func (t *Tournament) remoteTarget() (string, BracketClient, bool) {
	if t.link == nil {
		return "", nil, false
	}
	return t.link.TournamentID, t.client, true
}

// findTeam must be called with t.mu held.
func (t *Tournament) findTeam(team *Team) (int, *Team) {
	for i, entry := range t.roster {
		if entry.Equals(team) {
			return i, entry
		}
	}
	return -1, nil
}

// AddTeam enters a team. If the tournament is linked and notifyRemote is set the
// team is then registered with the provider; a registration failure leaves the
// team entered and is returned in the RemoteSync.
func (t *Tournament) AddTeam(ctx context.Context, team *Team, notifyRemote bool) (RemoteSync, error) {
	pending, err := t.EnterTeam(team, notifyRemote)
	if err != nil {
		return RemoteSync{}, err
	}
	return pending.Run(ctx), nil
}

// EnterTeam is the local half of AddTeam. The returned PendingSync registers the
// team with the provider.
func (t *Tournament) EnterTeam(team *Team, notifyRemote bool) (PendingSync, error) {
	if team == nil || team.Size() == 0 {
		return PendingSync{}, fmt.Errorf("%w: no team given", ErrInvalidRoster)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, existing := t.findTeam(team); existing != nil {
		return PendingSync{}, fmt.Errorf("%w: %s", ErrDuplicateTeam, team)
	}
	entry := team.clone()
	entry.Ranking = Unranked
	entry.RemoteID = ""
	t.roster = append(t.roster, entry)
	remoteID, client, linked := t.remoteTarget()

	if !notifyRemote || !linked {
		return PendingSync{}, nil
	}
	if client == nil {
		return syncError(NewRemoteUnavailable("AddParticipant", errNoBracketClient)), nil
	}
	return t.registration(remoteID, client, entry), nil
}

// registration adds entry to the provider. If entry left the roster while the
// call was in flight the new participant is removed again. Must be called with
// t.mu held.
func (t *Tournament) registration(remoteID string, client BracketClient, entry *Team) PendingSync {
	sent := entry.clone()
	return PendingSync{run: func(ctx context.Context) RemoteSync {
		participantID, err := client.AddParticipant(ctx, remoteID, sent)
		if err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("AddParticipant", err)}
		}

		t.mu.Lock()
		attached := slices.Contains(t.roster, entry)
		if attached {
			entry.RemoteID = participantID
		}
		known := attached || t.hasParticipant(participantID)
		t.mu.Unlock()
		if known {
			return RemoteSync{Attempted: true}
		}

		if err := client.RemoveParticipant(ctx, remoteID, participantID); err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("RemoveParticipant", err)}
		}
		return RemoteSync{Attempted: true, Err: fmt.Errorf("%w: %s was withdrawn during registration, provider entry %s removed",
			ErrUnknownTeam, sent, participantID)}
	}}
}

// hasParticipant must be called with t.mu held.
func (t *Tournament) hasParticipant(participantID string) bool {
	for _, entry := range t.roster {
		if entry.RemoteID == participantID {
			return true
		}
	}
	return false
}

// RemoveTeam withdraws the team equal to the given one. It returns false when no
// such team is entered.
func (t *Tournament) RemoveTeam(ctx context.Context, team *Team, notifyRemote bool) (bool, RemoteSync) {
	removed, pending := t.WithdrawTeam(team, notifyRemote)
	if !removed {
		return false, RemoteSync{}
	}
	return true, pending.Run(ctx)
}

// WithdrawTeam is the local half of RemoveTeam.
func (t *Tournament) WithdrawTeam(team *Team, notifyRemote bool) (bool, PendingSync) {
	if team == nil {
		return false, PendingSync{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	idx, removed := t.findTeam(team)
	if removed == nil {
		return false, PendingSync{}
	}
	t.roster = append(t.roster[:idx:idx], t.roster[idx+1:]...)
	participantID := removed.RemoteID
	remoteID, client, linked := t.remoteTarget()

	switch {
	case !notifyRemote || !linked:
		return true, PendingSync{}
	case participantID == "":
		return true, syncError(fmt.Errorf("%w: participant %s", ErrNotRegistered, removed))
	case client == nil:
		return true, syncError(NewRemoteUnavailable("RemoveParticipant", errNoBracketClient))
	}
	return true, PendingSync{run: func(ctx context.Context) RemoteSync {
		if err := client.RemoveParticipant(ctx, remoteID, participantID); err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("RemoveParticipant", err)}
		}
		return RemoteSync{Attempted: true}
	}}
}

// StartMatch marks the match between two entered teams as underway, creating it
// if the log has no unfinished match for the pair. Unless force is set it fails
// when either team is already playing. The first match moves a pending
// tournament to active.
func (t *Tournament) StartMatch(ctx context.Context, team1, team2 *Team, force bool) (Match, RemoteSync, error) {
	started, pending, err := t.BeginMatch(team1, team2, force)
	if err != nil {
		return Match{}, RemoteSync{}, err
	}
	return started, pending.Run(ctx), nil
}

// BeginMatch is the local half of StartMatch.
func (t *Tournament) BeginMatch(team1, team2 *Team, force bool) (Match, PendingSync, error) {
	if team1 == nil || team2 == nil || team1.Equals(team2) {
		return Match{}, PendingSync{}, fmt.Errorf("%w: a match needs two different teams", ErrInvalidMatch)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateCompleted {
		return Match{}, PendingSync{}, fmt.Errorf("%w: matches cannot start in a completed tournament", ErrInvalidTransition)
	}
	_, entry1 := t.findTeam(team1)
	_, entry2 := t.findTeam(team2)
	if entry1 == nil || entry2 == nil {
		return Match{}, PendingSync{}, fmt.Errorf("%w: %s", ErrUnknownTeam, firstMissing(entry1, team1, team2))
	}

	if !force {
		for _, m := range t.matches {
			if m.State != MatchUnderway {
				continue
			}
			if m.Involves(entry1) {
				return Match{}, PendingSync{}, fmt.Errorf("%w: %s is playing %s", ErrTeamBusy, entry1, m)
			}
			if m.Involves(entry2) {
				return Match{}, PendingSync{}, fmt.Errorf("%w: %s is playing %s", ErrTeamBusy, entry2, m)
			}
		}
	}

	match := t.openMatch(entry1, entry2)
	if match == nil {
		match = &Match{Team1: entry1, Team2: entry2, State: MatchNotStarted}
		t.matches = append(t.matches, match)
	}
	match.State = MatchUnderway
	t.state = StateActive
	started := copyMatch(match)
	remoteID, client, linked := t.remoteTarget()

	switch {
	case !linked:
		return started, PendingSync{}, nil
	case started.RemoteID == "":
		return started, syncError(fmt.Errorf("%w: match %s", ErrNotRegistered, &started)), nil
	case client == nil:
		return started, syncError(NewRemoteUnavailable("MarkMatchUnderway", errNoBracketClient)), nil
	}
	return started, PendingSync{run: func(ctx context.Context) RemoteSync {
		if err := client.MarkMatchUnderway(ctx, remoteID, started.RemoteID); err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("MarkMatchUnderway", err)}
		}
		return RemoteSync{Attempted: true}
	}}, nil
}

// AddMatch records a decided match. An unfinished match between the pair is
// completed if one exists, otherwise a finished match is appended. Like
// StartMatch it activates a pending tournament.
func (t *Tournament) AddMatch(ctx context.Context, result MatchResult) (Match, RemoteSync, error) {
	finished, pending, err := t.RecordMatch(result)
	if err != nil {
		return Match{}, RemoteSync{}, err
	}
	return finished, pending.Run(ctx), nil
}

// RecordMatch is the local half of AddMatch.
func (t *Tournament) RecordMatch(result MatchResult) (Match, PendingSync, error) {
	if result.Winner == nil || result.Loser == nil || result.Winner.Equals(result.Loser) {
		return Match{}, PendingSync{}, fmt.Errorf("%w: a result needs a distinct winner and loser", ErrInvalidMatch)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateCompleted {
		return Match{}, PendingSync{}, fmt.Errorf("%w: results cannot be recorded in a completed tournament", ErrInvalidTransition)
	}
	_, winner := t.findTeam(result.Winner)
	_, loser := t.findTeam(result.Loser)
	if winner == nil || loser == nil {
		return Match{}, PendingSync{}, fmt.Errorf("%w: %s", ErrUnknownTeam, firstMissing(winner, result.Winner, result.Loser))
	}

	match := t.openMatch(winner, loser)
	if match == nil {
		match = &Match{Team1: winner, Team2: loser}
		t.matches = append(t.matches, match)
	}
	match.State = MatchFinished
	match.Winner = match.SideOf(winner)
	t.state = StateActive
	if result.Outcome != nil {
		o := *result.Outcome
		match.Outcome = &o
	}
	finished := copyMatch(match)
	report := MatchReport{
		MatchID:             match.RemoteID,
		WinnerSide:          match.Winner,
		WinnerParticipantID: winner.RemoteID,
		ScoresCSV:           result.Scores,
	}
	remoteID, client, linked := t.remoteTarget()

	switch {
	case !linked:
		return finished, PendingSync{}, nil
	case report.MatchID == "" || report.WinnerParticipantID == "":
		return finished, syncError(fmt.Errorf("%w: match %s", ErrNotRegistered, &finished)), nil
	case client == nil:
		return finished, syncError(NewRemoteUnavailable("ReportMatchResult", errNoBracketClient)), nil
	}
	return finished, PendingSync{run: func(ctx context.Context) RemoteSync {
		if err := client.ReportMatchResult(ctx, remoteID, report); err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("ReportMatchResult", err)}
		}
		return RemoteSync{Attempted: true}
	}}, nil
}

// openMatch returns the unfinished match between a and b, preferring one that is
// already underway. Must be called with t.mu held.
func (t *Tournament) openMatch(a, b *Team) *Match {
	var found *Match
	for _, m := range t.matches {
		if m.State == MatchFinished || !m.Between(a, b) {
			continue
		}
		if m.State == MatchUnderway {
			return m
		}
		if found == nil {
			found = m
		}
	}
	return found
}

// FinaliseTournament completes the tournament and assigns podium rankings by
// position, winner first. Teams not listed stay unranked. Completion is local and
// always kept; the RemoteSync reports whether the provider was finalised too.
func (t *Tournament) FinaliseTournament(ctx context.Context, rankings []*Team) (RemoteSync, error) {
	pending, err := t.Complete(rankings)
	if err != nil {
		return RemoteSync{}, err
	}
	return pending.Run(ctx), nil
}

// Complete is the local half of FinaliseTournament.
func (t *Tournament) Complete(rankings []*Team) (PendingSync, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.state == StateCompleted:
		return PendingSync{}, fmt.Errorf("%w: tournament is already completed", ErrInvalidTransition)
	case t.state == StatePending && len(t.matches) > 0:
		return PendingSync{}, fmt.Errorf("%w: a tournament with matches must be active before it completes", ErrInvalidTransition)
	}

	placed := make([]*Team, 0, len(rankings))
	seen := make(map[*Team]bool, len(rankings))
	for _, r := range rankings {
		_, entry := t.findTeam(r)
		if entry == nil {
			return PendingSync{}, fmt.Errorf("%w: %s", ErrUnknownTeam, r)
		}
		if seen[entry] {
			return PendingSync{}, fmt.Errorf("%w: %s is ranked twice", ErrDuplicateTeam, entry)
		}
		seen[entry] = true
		placed = append(placed, entry)
	}

	for _, entry := range t.roster {
		entry.Ranking = Unranked
	}
	final := make([]FinalRanking, 0, len(placed))
	for i, entry := range placed {
		entry.Ranking = uint32(i + 1)
		if entry.RemoteID != "" {
			final = append(final, FinalRanking{ParticipantID: entry.RemoteID, Rank: entry.Ranking})
		}
	}
	t.state = StateCompleted
	remoteID, client, linked := t.remoteTarget()

	switch {
	case !linked:
		return PendingSync{}, nil
	case client == nil:
		return syncError(NewRemoteUnavailable("FinalizeTournament", errNoBracketClient)), nil
	}
	return PendingSync{run: func(ctx context.Context) RemoteSync {
		if err := client.FinalizeTournament(ctx, remoteID, final); err != nil {
			return RemoteSync{Attempted: true, Err: asRemoteError("FinalizeTournament", err)}
		}
		return RemoteSync{Attempted: true}
	}}, nil
}

// RankFromRemote fills an empty podium of a completed tournament from the
// provider's final placements, matching teams by participant id. It returns the
// number of teams ranked; a podium set in the meantime is left alone.
func (t *Tournament) RankFromRemote(ctx context.Context) (int, error) {
	t.mu.RLock()
	remoteID, client, linked := t.remoteTarget()
	state := t.state
	t.mu.RUnlock()

	switch {
	case !linked:
		return 0, ErrNotLinked
	case state != StateCompleted:
		return 0, fmt.Errorf("%w: only a completed tournament has placements", ErrInvalidTransition)
	case client == nil:
		return 0, NewRemoteUnavailable("FetchFullState", errNoBracketClient)
	}

	remote, err := client.FetchFullState(ctx, remoteID)
	if err != nil {
		return 0, asRemoteError("FetchFullState", err)
	}
	placings := make(map[string]uint32, len(remote.Participants))
	for _, p := range remote.Participants {
		if p.ID != "" && p.FinalRank > 0 {
			placings[p.ID] = p.FinalRank
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range t.roster {
		if entry.IsRanked() {
			return 0, nil
		}
	}
	ranked := 0
	for _, entry := range t.roster {
		if rank, ok := placings[entry.RemoteID]; ok && entry.RemoteID != "" {
			entry.Ranking = rank
			ranked++
		}
	}
	return ranked, nil
}

// RebuildIndex replaces the roster and match log with the provider's current
// state. It is all or nothing: if the fetch or the mapping fails, local state is
// left as it was.
func (t *Tournament) RebuildIndex(ctx context.Context) error {
	t.mu.RLock()
	remoteID, client, linked := t.remoteTarget()
	t.mu.RUnlock()

	if !linked {
		return ErrNotLinked
	}
	if client == nil {
		return NewRemoteUnavailable("FetchFullState", errNoBracketClient)
	}

	state, err := client.FetchFullState(ctx, remoteID)
	if err != nil {
		return asRemoteError("FetchFullState", err)
	}

	roster, matches, err := mapRemoteState(state)
	if err != nil {
		return &RemoteError{Op: "FetchFullState", Kind: ErrRemoteRejected, Cause: err}
	}

	t.mu.Lock()
	t.roster = roster
	t.matches = matches
	t.mu.Unlock()
	return nil
}

func mapRemoteState(state RemoteState) ([]*Team, []*Match, error) {
	roster := make([]*Team, 0, len(state.Participants))
	byID := make(map[string]*Team, len(state.Participants))

	for _, p := range state.Participants {
		if p.ID == "" {
			return nil, nil, fmt.Errorf("participant %q has no id", p.Name)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, nil, fmt.Errorf("participant id %s listed twice", p.ID)
		}
		team, err := NewTeam(p.Members...)
		if err != nil {
			return nil, nil, fmt.Errorf("participant %s (%q): %w", p.ID, p.Name, err)
		}
		for _, existing := range roster {
			if existing.Equals(team) {
				return nil, nil, fmt.Errorf("participant %s: %w: %s", p.ID, ErrDuplicateTeam, team)
			}
		}
		team.RemoteID = p.ID
		roster = append(roster, team)
		byID[p.ID] = team
	}

	matches := make([]*Match, 0, len(state.Matches))
	for _, rm := range state.Matches {
		if rm.Player1ID == "" || rm.Player2ID == "" {
			continue
		}
		team1, ok1 := byID[rm.Player1ID]
		team2, ok2 := byID[rm.Player2ID]
		if !ok1 || !ok2 {
			return nil, nil, fmt.Errorf("match %s references an unknown participant", rm.ID)
		}

		m := &Match{Team1: team1, Team2: team2, State: MatchNotStarted, RemoteID: rm.ID}
		switch {
		case rm.State == RemoteMatchComplete:
			m.State = MatchFinished
			switch rm.WinnerID {
			case rm.Player1ID:
				m.Winner = SideTeam1
			case rm.Player2ID:
				m.Winner = SideTeam2
			case "":
			default:
				return nil, nil, fmt.Errorf("match %s winner %s is not one of its players", rm.ID, rm.WinnerID)
			}
		case rm.UnderwayAt != nil:
			m.State = MatchUnderway
		}
		matches = append(matches, m)
	}
	return roster, matches, nil
}

func firstMissing(found *Team, a, b *Team) *Team {
	if found == nil {
		return a
	}
	return b
}
