package booking

// BookingClient defines the interface for interacting with the Playtomic API.
// This allows for mock implementations to be used in tests.
type BookingClient interface {
	GetReservations(params *SearchReservationsParams) ([]ReservationSummary, error)
	GetReservation(matchID string) (Reservation, error)
}
