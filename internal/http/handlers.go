package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/LucasFasolato/padel-point-engine/internal/challenge"
	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
)

// stalePendingAfter is how long a result may sit in PENDING_CONFIRM before
// the /process sweep sends a reminder.
const stalePendingAfter = 72 * time.Hour

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.MetricsStore.GetAll()
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			log.Error("Failed to get lifetime counters", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, counters)
	}
}

// writeJSON writes v as a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeStoreError maps the store's sentinel errors to HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, ladder.ErrNotFound), errors.Is(err, ladder.ErrPlayerNotFound),
		errors.Is(err, league.ErrNotFound), errors.Is(err, standings.ErrNoSnapshot),
		errors.Is(err, challenge.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ladder.ErrForbidden), errors.Is(err, challenge.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ladder.ErrIllegalTransition), errors.Is(err, league.ErrAlreadyMember),
		errors.Is(err, challenge.ErrIllegalState):
		status = http.StatusConflict
	case errors.Is(err, ladder.ErrInvalidScoreline), errors.Is(err, ladder.ErrLeagueMembersMissing),
		errors.Is(err, challenge.ErrSelfChallenge):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// transitionResponse wraps a settled result so idempotent replays are
// visible to the caller without a distinct status code.
type transitionResponse struct {
	AlreadyApplied bool                `json:"already_applied"`
	Match          *ladder.MatchResult `json:"match"`
}

// writeTransition renders the outcome of a lifecycle transition. Replays of
// an already-settled result come back as 200 with already_applied set.
func writeTransition(w http.ResponseWriter, match *ladder.MatchResult, err error) {
	if errors.Is(err, ladder.ErrAlreadyApplied) {
		writeJSON(w, http.StatusOK, transitionResponse{AlreadyApplied: true, Match: match})
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Match: match})
}

func (s *Server) CreateResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ladder.NewMatchResult
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		// The authenticated caller is the reporter, regardless of the payload.
		actor := actorFromContext(r)
		input.ReportedBy = actor.UserID
		if input.Source == "" {
			input.Source = ladder.SourceManual
		}

		match, err := s.Store.CreateResult(input)
		if err != nil {
			log.Error("Failed to create result", "error", err)
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncResultsReported()
		s.MetricsStore.Increment(metrics.CounterResultsReported)
		writeJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) GetResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.GetResult(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

func (s *Server) ConfirmResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.Confirm(r.PathValue("id"), actorFromContext(r))
		if err != nil && !errors.Is(err, ladder.ErrAlreadyApplied) {
			log.Error("Failed to confirm result", "error", err, "matchID", r.PathValue("id"))
		}
		writeTransition(w, match, err)
	}
}

func (s *Server) RejectResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		match, err := s.Store.Reject(r.PathValue("id"), actorFromContext(r), body.Reason)
		writeTransition(w, match, err)
	}
}

func (s *Server) DisputeResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		match, err := s.Store.Dispute(r.PathValue("id"), actorFromContext(r), body.Reason, body.Message)
		if err == nil {
			s.Notifier.SendDisputeNotification(match, isDryRunFromContext(r))
		}
		writeTransition(w, match, err)
	}
}

func (s *Server) ResolveConfirmAsIsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.ResolveConfirmAsIs(r.PathValue("id"), actorFromContext(r))
		writeTransition(w, match, err)
	}
}

func (s *Server) ResolveOverrideHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WinnerTeam int `json:"winner_team"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if body.WinnerTeam != ladder.TeamA && body.WinnerTeam != ladder.TeamB {
			http.Error(w, "winner_team must be 1 or 2", http.StatusBadRequest)
			return
		}

		match, err := s.Store.ResolveOverride(r.PathValue("id"), actorFromContext(r), body.WinnerTeam)
		writeTransition(w, match, err)
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.Store.GetProfile(actorFromContext(r).UserID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) EloHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cursor int64
		if c := r.URL.Query().Get("cursor"); c != "" {
			parsed, err := strconv.ParseInt(c, 10, 64)
			if err != nil {
				http.Error(w, "Invalid cursor", http.StatusBadRequest)
				return
			}
			cursor = parsed
		}
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			parsed, err := strconv.Atoi(l)
			if err != nil {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, next, err := s.Store.GetEloHistory(actorFromContext(r).UserID, cursor, limit)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"entries":     entries,
			"next_cursor": next,
		})
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) AdminAdjustHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r)
		if !actor.Role.Admin() {
			writeStoreError(w, ladder.ErrForbidden)
			return
		}

		var body struct {
			Delta int `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if body.Delta == 0 {
			http.Error(w, "delta must be non-zero", http.StatusBadRequest)
			return
		}

		userID := r.PathValue("id")
		if err := s.Store.AdminAdjust(userID, body.Delta); err != nil {
			log.Error("Failed to adjust rating", "error", err, "userID", userID)
			writeStoreError(w, err)
			return
		}
		log.Info("Adjusted rating", "userID", userID, "delta", body.Delta, "by", actor.UserID)

		profile, err := s.Store.GetProfile(userID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) CreateChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OpponentID string  `json:"opponent_id"`
			LeagueID   *string `json:"league_id,omitempty"`
			Message    string  `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if body.OpponentID == "" {
			http.Error(w, "opponent_id is required", http.StatusBadRequest)
			return
		}

		c, err := s.Challenges.Create(actorFromContext(r).UserID, body.OpponentID, body.LeagueID, body.Message)
		if err != nil {
			log.Error("Failed to create challenge", "error", err)
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func (s *Server) ListChallengesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		challenges, err := s.Challenges.ListForPlayer(actorFromContext(r).UserID)
		if err != nil {
			http.Error(w, "Failed to get challenges", http.StatusInternalServerError)
			log.Error("Failed to get challenges", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, challenges)
	}
}

func (s *Server) AcceptChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.Challenges.Accept(r.PathValue("id"), actorFromContext(r).UserID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) CancelChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.Challenges.Cancel(r.PathValue("id"), actorFromContext(r).UserID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) CompleteChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Sets []ladder.SetScore `json:"sets"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		match, err := s.Challenges.CompleteWithResult(r.PathValue("id"), actorFromContext(r), body.Sets)
		if err != nil {
			log.Error("Failed to complete challenge", "error", err, "challengeID", r.PathValue("id"))
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncResultsReported()
		s.MetricsStore.Increment(metrics.CounterResultsReported)
		writeJSON(w, http.StatusCreated, match)
	}
}

func (s *Server) SuggestOpponentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			parsed, err := strconv.Atoi(l)
			if err != nil {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		suggestions, err := s.Challenges.SuggestOpponents(actorFromContext(r).UserID, limit)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestions)
	}
}

func (s *Server) CreateLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name    string          `json:"name"`
			Mode    league.Mode     `json:"mode"`
			Scoring *league.Scoring `json:"scoring,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if body.Mode == "" {
			body.Mode = league.ModeOpen
		}
		if body.Mode != league.ModeOpen && body.Mode != league.ModeScheduled {
			http.Error(w, "mode must be OPEN or SCHEDULED", http.StatusBadRequest)
			return
		}
		scoring := league.DefaultScoring()
		if body.Scoring != nil {
			scoring = *body.Scoring
		}

		l, err := s.Leagues.CreateLeague(body.Name, body.Mode, scoring)
		if err != nil {
			log.Error("Failed to create league", "error", err)
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func (s *Server) ListLeaguesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagues, err := s.Leagues.ListLeagues()
		if err != nil {
			http.Error(w, "Failed to get leagues", http.StatusInternalServerError)
			log.Error("Failed to get leagues from store", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, leagues)
	}
}

func (s *Server) GetLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := s.Leagues.GetLeague(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := s.Leagues.GetMembers(r.PathValue("id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func (s *Server) AddMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if body.UserID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		leagueID := r.PathValue("id")
		if err := s.Leagues.AddMember(leagueID, body.UserID); err != nil {
			log.Error("Failed to add member", "error", err, "leagueID", leagueID, "userID", body.UserID)
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RemoveMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID := r.PathValue("id")
		userID := r.PathValue("userID")
		if err := s.Leagues.RemoveMember(leagueID, userID); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID := r.PathValue("id")

		// An optional max_age serves a cached snapshot only while it is young
		// enough, recomputing otherwise.
		var snap *standings.Snapshot
		var err error
		if maxAgeStr := r.URL.Query().Get("max_age"); maxAgeStr != "" {
			maxAge, parseErr := time.ParseDuration(maxAgeStr)
			if parseErr != nil {
				http.Error(w, "Invalid max_age", http.StatusBadRequest)
				return
			}
			snap, err = s.Standings.Fresh(leagueID, maxAge)
		} else {
			snap, err = s.Standings.GetLatest(leagueID)
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) RecomputeStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID := r.PathValue("id")
		isDryRun := isDryRunFromContext(r)

		if err := s.Processor.RecomputeStandings(leagueID, isDryRun); err != nil {
			log.Error("Failed to recompute standings", "error", err, "leagueID", leagueID)
			writeStoreError(w, err)
			return
		}

		snap, err := s.Standings.GetLatest(leagueID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) FetchResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting reservation fetch...")
		created, err := s.Ingestor.Fetch()
		if err != nil {
			log.Error("Error fetching reservations", "error", err)
			http.Error(w, "Failed to fetch reservations", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Reservation fetch completed.")
		log.Info("Reservation fetch finished.", "created", created)
	}
}

func (s *Server) ProcessResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting result processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessResults(isDryRun)
		s.Processor.SweepStalePending(stalePendingAfter, isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Result processing completed.")
		log.Info("Result processing finished.")
	}
}

func (s *Server) RecomputeStandingsPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received recompute standings message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		event := pubsub.RecomputeStandingsEvent{}
		s.pubsub.ProcessMessage(rawData, &event)
		if err := s.Processor.RecomputeStandings(event.LeagueID, isDryRun); err != nil {
			log.Error("Failed to recompute standings", "error", err, "leagueID", event.LeagueID)
			http.Error(w, "Failed to recompute standings", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// StandingsCommandHandler returns a handler for the /standings Slack command.
// The command text names the league.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		leagueName := r.FormValue("text")
		if leagueName == "" {
			http.Error(w, "League name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received standings command", "league", leagueName)

		target, err := s.findLeagueByName(leagueName)
		if err != nil {
			http.Error(w, "League not found.", http.StatusNotFound)
			return
		}

		snap, err := s.Standings.GetLatest(target.ID)
		if err != nil {
			log.Warn("Could not get standings", "league", leagueName, "error", err)
			http.Error(w, "No standings for this league yet.", http.StatusNotFound)
			return
		}

		msg, err := s.Notifier.FormatStandingsResponse(snap, target.Name)
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatRatingLeaderboardResponse(players)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

func (s *Server) findLeagueByName(name string) (*league.League, error) {
	leagues, err := s.Leagues.ListLeagues()
	if err != nil {
		return nil, err
	}
	for _, l := range leagues {
		if l.Name == name {
			return &l, nil
		}
	}
	return nil, league.ErrNotFound
}
