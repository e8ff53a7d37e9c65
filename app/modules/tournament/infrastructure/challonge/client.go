// Package challonge implements the bracket provider client against the
// Challonge v1 REST API.
package challonge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	tournamentmetrics "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.challonge.com/v1/"
	DefaultTimeout = 10 * time.Second

	defaultRequestsPerSecond = 2
	defaultBurst             = 5

	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client implements tournamentdomain.BracketClient.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics tournamentmetrics.TournamentMetrics
}

var _ tournamentdomain.BracketClient = (*Client)(nil)

// NewClient creates a client. Requests are traced through otelhttp and rate
// limited client-side.
func NewClient(cfg Config, logger *slog.Logger, metrics tournamentmetrics.TournamentMetrics) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("challonge: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("challonge: invalid base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = tournamentmetrics.NewNoop()
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: base,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// ListTournaments returns the tournaments owned by the API key. Used at startup
// to check the credentials.
func (c *Client) ListTournaments(ctx context.Context) ([]tournamentdomain.RemoteTournament, error) {
	var out []tournamentEnvelope
	if err := c.do(ctx, "ListTournaments", "tournaments.index", http.MethodGet, "tournaments.json", nil, nil, &out); err != nil {
		return nil, err
	}
	list := make([]tournamentdomain.RemoteTournament, len(out))
	for i, env := range out {
		list[i] = env.Tournament.remote()
	}
	return list, nil
}

func (c *Client) CreateTournament(ctx context.Context, name, format string) (tournamentdomain.RemoteTournament, error) {
	body := map[string]any{
		"tournament": map[string]any{
			"name":            name,
			"tournament_type": format,
			"url":             slug(name),
		},
	}
	var out tournamentEnvelope
	if err := c.do(ctx, "CreateTournament", "tournaments.create", http.MethodPost, "tournaments.json", nil, body, &out); err != nil {
		return tournamentdomain.RemoteTournament{}, err
	}
	return out.Tournament.remote(), nil
}

func (c *Client) AddParticipant(ctx context.Context, remoteTournamentID string, team *tournamentdomain.Team) (string, error) {
	misc, err := json.Marshal(participantMisc{Members: team.Members()})
	if err != nil {
		return "", tournamentdomain.NewRemoteRejected("AddParticipant", err.Error())
	}
	body := map[string]any{
		"participant": map[string]any{
			"name": team.String(),
			"misc": string(misc),
		},
	}
	var out participantEnvelope
	path := "tournaments/" + remoteTournamentID + "/participants.json"
	if err := c.do(ctx, "AddParticipant", "participants.create", http.MethodPost, path, nil, body, &out); err != nil {
		return "", err
	}
	return formatID(out.Participant.ID), nil
}

func (c *Client) RemoveParticipant(ctx context.Context, remoteTournamentID, remoteParticipantID string) error {
	path := "tournaments/" + remoteTournamentID + "/participants/" + remoteParticipantID + ".json"
	return c.do(ctx, "RemoveParticipant", "participants.destroy", http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) MarkMatchUnderway(ctx context.Context, remoteTournamentID, remoteMatchID string) error {
	path := "tournaments/" + remoteTournamentID + "/matches/" + remoteMatchID + "/mark_as_underway.json"
	return c.do(ctx, "MarkMatchUnderway", "matches.mark_as_underway", http.MethodPost, path, nil, map[string]any{}, nil)
}

func (c *Client) ReportMatchResult(ctx context.Context, remoteTournamentID string, report tournamentdomain.MatchReport) error {
	winnerID, err := strconv.ParseInt(report.WinnerParticipantID, 10, 64)
	if err != nil {
		return tournamentdomain.NewRemoteRejected("ReportMatchResult", fmt.Sprintf("participant id %q is not numeric", report.WinnerParticipantID))
	}
	scores := report.ScoresCSV
	if scores == "" {
		// Challonge requires a score with a winner.
		scores = "1-0"
		if report.WinnerSide == tournamentdomain.SideTeam2 {
			scores = "0-1"
		}
	}
	body := map[string]any{
		"match": map[string]any{
			"winner_id":  winnerID,
			"scores_csv": scores,
		},
	}
	path := "tournaments/" + remoteTournamentID + "/matches/" + report.MatchID + ".json"
	return c.do(ctx, "ReportMatchResult", "matches.update", http.MethodPut, path, nil, body, nil)
}

// FinalizeTournament completes the bracket. Challonge derives final ranks from
// the bracket itself, so rankings are only logged.
func (c *Client) FinalizeTournament(ctx context.Context, remoteTournamentID string, rankings []tournamentdomain.FinalRanking) error {
	c.logger.DebugContext(ctx, "Finalizing remote tournament",
		slog.String("remote_tournament_id", remoteTournamentID),
		slog.Int("rankings", len(rankings)),
	)
	path := "tournaments/" + remoteTournamentID + "/finalize.json"
	return c.do(ctx, "FinalizeTournament", "tournaments.finalize", http.MethodPost, path, nil, map[string]any{}, nil)
}

func (c *Client) FetchFullState(ctx context.Context, remoteTournamentID string) (tournamentdomain.RemoteState, error) {
	query := url.Values{}
	query.Set("include_participants", "1")
	query.Set("include_matches", "1")
	var out tournamentEnvelope
	path := "tournaments/" + remoteTournamentID + ".json"
	if err := c.do(ctx, "FetchFullState", "tournaments.show", http.MethodGet, path, query, nil, &out); err != nil {
		return tournamentdomain.RemoteState{}, err
	}
	return out.Tournament.state(), nil
}

// do sends one request. The api key travels in the JSON body for POST and PUT
// and in the query string otherwise. out may be nil.
func (c *Client) do(ctx context.Context, op, endpoint, method, path string, query url.Values, body map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return tournamentdomain.NewRemoteUnavailable(op, err)
	}

	u := c.baseURL.JoinPath(path)
	if query == nil {
		query = url.Values{}
	}

	var reader io.Reader
	if body != nil {
		body["api_key"] = c.apiKey
		raw, err := json.Marshal(body)
		if err != nil {
			return tournamentdomain.NewRemoteRejected(op, err.Error())
		}
		reader = bytes.NewReader(raw)
	} else {
		query.Set("api_key", c.apiKey)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return tournamentdomain.NewRemoteRejected(op, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordBracketRequest(ctx, endpoint, "error", time.Since(start))
		c.logger.WarnContext(ctx, "Bracket provider request failed",
			slog.String("operation", op),
			slog.String("error", redact(err.Error(), c.apiKey)),
		)
		return tournamentdomain.NewRemoteUnavailable(op, errors.New(redact(err.Error(), c.apiKey)))
	}
	defer resp.Body.Close()
	c.metrics.RecordBracketRequest(ctx, endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 300 {
		return c.responseError(ctx, op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &tournamentdomain.RemoteError{
			Op:    op,
			Kind:  tournamentdomain.ErrRemoteRejected,
			Cause: fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func (c *Client) responseError(ctx context.Context, op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	messages := body.Errors
	if len(messages) == 0 {
		messages = []string{resp.Status}
	}

	c.logger.WarnContext(ctx, "Bracket provider returned an error",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Any("errors", messages),
	)

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return &tournamentdomain.RemoteError{
			Op:       op,
			Kind:     tournamentdomain.ErrRemoteUnavailable,
			Messages: messages,
		}
	}
	return tournamentdomain.NewRemoteRejected(op, messages...)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// slug builds a unique Challonge url path from a tournament name.
func slug(name string) string {
	base := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if len(base) > 40 {
		base = base[:40]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	if base == "" {
		return "t_" + suffix
	}
	return base + "_" + suffix
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[redacted]")
}
