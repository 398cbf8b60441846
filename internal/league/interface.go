package league

// LeagueStore manages leagues and their membership rosters.
type LeagueStore interface {
	CreateLeague(name string, mode Mode, scoring Scoring) (*League, error)
	GetLeague(id string) (*League, error)
	ListLeagues() ([]League, error)
	AddMember(leagueID, userID string) error
	RemoveMember(leagueID, userID string) error
	GetMembers(leagueID string) ([]Member, error)
	IsMember(leagueID, userID string) bool
}
