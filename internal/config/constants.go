package config

const (
	// DefaultDatabasePath is where the catalog database lives unless
	// DATABASE_PATH is set.
	DefaultDatabasePath = "./booknest.db"
)
