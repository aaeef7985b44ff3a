package instance

import (
	"os"

	"github.com/angelmondragon/stallpos/pkg/env"
)

const defaultID = "local"

// GetID names this process in logs. STALLPOS_INSTANCE_ID wins, then the
// platform's dyno name, then the hostname.
func GetID() string {
	if id := env.First("STALLPOS_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
