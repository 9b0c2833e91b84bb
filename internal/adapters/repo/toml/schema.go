package toml

import (
	"fmt"
	"strings"
)

const documentVersion = 1

// document is the on-disk layout of session.toml.
type document struct {
	Version int         `toml:"version"`
	Session storedToken `toml:"session"`
}

type storedToken struct {
	Token   string `toml:"token"`
	Origin  string `toml:"origin,omitempty"`
	SavedAt string `toml:"saved_at,omitempty"`
}

func (d document) check() error {
	if d.Version > documentVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", d.Version, documentVersion)
	}
	return nil
}

// tokenFor returns the stored token when it was saved for origin. Tokens
// written without an origin match any backend.
func (d document) tokenFor(origin string) (string, bool) {
	token := strings.TrimSpace(d.Session.Token)
	if token == "" {
		return "", false
	}
	if d.Session.Origin != "" && origin != "" && d.Session.Origin != origin {
		return "", false
	}
	return token, true
}
