package config

// Default paths for persisted state
const (
	// DefaultDatabasePath is the default path for the accounts database
	DefaultDatabasePath = "./shelfmate.db"

	// DefaultProgressDir is the default directory for per-account progress documents
	DefaultProgressDir = "./progress"
)
