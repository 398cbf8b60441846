package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

// APIClient is a custom Playtomic API client that implements the BookingClient interface.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
}

// NewClient creates a new custom Playtomic client.
func NewClient() BookingClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL: "https://api.playtomic.io",
	}
}

// Ensure APIClient implements the BookingClient interface.
var _ BookingClient = (*APIClient)(nil)

// GetReservations fetches a list of reservations based on the provided search parameters.
func (c *APIClient) GetReservations(params *SearchReservationsParams) ([]ReservationSummary, error) {
	const pageSize = 300
	var (
		allSummaries []ReservationSummary
		page         = 0
	)

	for {
		externalParams := &models.SearchMatchesParams{
			SportID:       params.SportID,
			HasPlayers:    params.HasPlayers,
			Sort:          params.Sort,
			TenantIDs:     params.TenantIDs,
			FromStartDate: params.FromStartDate,
			Size:          pageSize,
			Page:          page,
		}

		log.Debug("Fetching reservations from Playtomic API", "params", externalParams)
		matches, err := c.apiClient.GetMatches(context.Background(), externalParams)
		if err != nil {
			return nil, fmt.Errorf("error fetching reservations from playtomic api: %w", err)
		}

		log.Info("Successfully fetched reservations", "count", len(matches), "page", page)
		for _, m := range matches {
			allSummaries = append(allSummaries, ReservationSummary{
				MatchID: m.MatchID,
				OwnerID: m.OwnerID,
			})
		}

		// If we got less than pageSize, we've reached the last page
		if len(matches) < pageSize {
			log.Info("Reached last page", "page", page)
			break
		}
		page++
	}
	log.Info("Fetched all reservations", "count", len(allSummaries))
	return allSummaries, nil
}

// playtomicMatchResponse mirrors the wire format of a single match lookup.
type playtomicMatchResponse struct {
	OwnerID       string `json:"owner_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	GameStatus    string `json:"game_status"`
	ResultsStatus string `json:"results_status"`
	ResourceName  string `json:"resource_name"`
	Teams         []struct {
		TeamID  string `json:"team_id"`
		Players []struct {
			UserID string `json:"user_id"`
			Name   string `json:"name"`
		} `json:"players"`
	} `json:"teams"`
	Results []struct {
		Name   string `json:"name"`
		Scores []struct {
			TeamID string `json:"team_id"`
			Score  int    `json:"score"`
		} `json:"scores"`
	} `json:"results"`
}

// GetReservation fetches a specific reservation by its ID.
func (c *APIClient) GetReservation(matchID string) (Reservation, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-AU,en;q=0.9")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")
	log.Debug("Requesting specific reservation from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return Reservation{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var matchResponse playtomicMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matchResponse); err != nil {
		return Reservation{}, fmt.Errorf("failed to decode response: %w", err)
	}

	const layout = "2006-01-02T15:04:05"

	startTime, err := time.Parse(layout, matchResponse.StartDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	endTime, err := time.Parse(layout, matchResponse.EndDate)
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to parse end time: %w", err)
	}

	var teams []Team
	for _, responseTeam := range matchResponse.Teams {
		t := Team{ID: responseTeam.TeamID}
		for _, responsePlayer := range responseTeam.Players {
			t.Players = append(t.Players, Player{
				UserID: responsePlayer.UserID,
				Name:   responsePlayer.Name,
			})
		}
		teams = append(teams, t)
	}

	var sets []SetResult
	for _, responseResult := range matchResponse.Results {
		set := SetResult{
			Name:   responseResult.Name,
			Scores: make(map[string]int),
		}
		for _, score := range responseResult.Scores {
			set.Scores[score.TeamID] = score.Score
		}
		sets = append(sets, set)
	}

	var gameStatus GameStatus
	switch matchResponse.GameStatus {
	case string(GameStatusPending):
		gameStatus = GameStatusPending
	case string(GameStatusPlayed):
		gameStatus = GameStatusPlayed
	case string(GameStatusCanceled):
		gameStatus = GameStatusCanceled
	default:
		gameStatus = GameStatusUnknown
		log.Warn("Unknown game status received from Playtomic API", "status", matchResponse.GameStatus, "matchID", matchID)
	}

	var resultsStatus ResultsStatus
	switch matchResponse.ResultsStatus {
	case string(ResultsStatusPending):
		resultsStatus = ResultsStatusPending
	case string(ResultsStatusConfirmed):
		resultsStatus = ResultsStatusConfirmed
	case string(ResultsStatusExpired):
		resultsStatus = ResultsStatusExpired
	default:
		resultsStatus = ResultsStatusUnknown
		log.Warn("Unknown results status received from Playtomic API", "status", matchResponse.ResultsStatus, "matchID", matchID)
	}

	reservation := Reservation{
		MatchID:       matchID,
		OwnerID:       matchResponse.OwnerID,
		Start:         startTime.Local().Unix(),
		End:           endTime.Local().Unix(),
		GameStatus:    gameStatus,
		ResultsStatus: resultsStatus,
		Teams:         teams,
		Sets:          sets,
		ResourceName:  matchResponse.ResourceName,
	}
	log.Debug("Reservation", "reservation", reservation)
	return reservation, nil
}
