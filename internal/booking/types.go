package booking

// SearchReservationsParams defines the parameters for searching for played
// reservations.
type SearchReservationsParams struct {
	SportID       string
	HasPlayers    bool
	Sort          string
	TenantIDs     []string
	FromStartDate string
}

// ReservationSummary contains the essential details of a reservation from a
// search result.
type ReservationSummary struct {
	MatchID string
	OwnerID *string
}

// GameStatus defines the status of a game.
type GameStatus string

const (
	GameStatusPending  GameStatus = "PENDING"
	GameStatusPlayed   GameStatus = "PLAYED"
	GameStatusCanceled GameStatus = "CANCELED"
	GameStatusUnknown  GameStatus = "UNKNOWN"
)

// ResultsStatus defines the status of the reservation results.
type ResultsStatus string

const (
	ResultsStatusPending   ResultsStatus = "PENDING"
	ResultsStatusConfirmed ResultsStatus = "CONFIRMED"
	ResultsStatusExpired   ResultsStatus = "EXPIRED"
	ResultsStatusUnknown   ResultsStatus = "UNKNOWN"
)

// Player represents a player in a reservation.
type Player struct {
	UserID string
	Name   string
}

// Team represents a team in a reservation.
type Team struct {
	ID      string
	Players []Player
}

// SetResult is one set's score keyed by team id.
type SetResult struct {
	Name   string
	Scores map[string]int
}

// Reservation is a booked court slot with its reported outcome.
type Reservation struct {
	MatchID       string
	OwnerID       string
	Start         int64
	End           int64
	GameStatus    GameStatus
	ResultsStatus ResultsStatus
	Teams         []Team
	Sets          []SetResult
	ResourceName  string
}
