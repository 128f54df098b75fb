package roomchat

import "time"

// Config controls how the client connects.
type Config struct {
	URL          string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults. There is deliberately no read
// timeout and no timeout on the join confirmation: if the server never
// answers, the client stays connected and idle until closed.
func DefaultConfig() Config {
	return Config{
		URL:          "ws://localhost:8080",
		DialTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
