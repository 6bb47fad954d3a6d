package constants

import "time"

// Application constants
const (
	// AppName is used for the logger name and the CLI
	AppName = "lorekeeper"
	// Version is reported by /api/health and `lorekeeper version`
	Version = "0.3.0"
)

// AI assistant constants
const (
	// MinDeepDiveSuggestions and MaxDeepDiveSuggestions bound what the deep-dive prompt asks for
	MinDeepDiveSuggestions = 3
	MaxDeepDiveSuggestions = 5

	// MaxCorpusChars caps the lore corpus sent with a consistency check. Entries beyond the cap
	// are left out whole, oldest first kept.
	MaxCorpusChars = 60000
)

// HTTP constants
const (
	// MaxRequestBodyBytes limits JSON bodies accepted by the API
	MaxRequestBodyBytes = 1 << 20

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 10 * time.Second

	// ClientTimeout is the default timeout of the CLI's HTTP client. AI calls are slow.
	ClientTimeout = 90 * time.Second
)

// Auth constants
const (
	// DevJWTSecret signs and verifies tokens when JWT_SECRET is unset outside production
	DevJWTSecret = "lorekeeper-development-secret"

	// DefaultTokenTTL is the lifetime of tokens minted by `lorekeeper token`
	DefaultTokenTTL = 24 * time.Hour
)
