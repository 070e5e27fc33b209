package globals

import (
	"os"
)

var JwtSecret = []byte(jwtSecret())

func jwtSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "dev_secret"
}

// Context keys
type ContextKey string

const SessionKey ContextKey = "session"
