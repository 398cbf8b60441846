package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Playtomic     PlaytomicConfig
	Elo           EloConfig
	ProjectID     string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// PlaytomicConfig scopes the booking ingest to a single venue.
type PlaytomicConfig struct {
	TenantID string
}

// EloConfig carries the tunables of the rating model.
type EloConfig struct {
	KFactor       int
	InitialRating int
}
