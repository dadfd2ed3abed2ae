package domain

import (
	"fmt"
	"strings"
	"time"
)

// AuthCredential is one session cookie installed on the page before login.
type AuthCredential struct {
	Name                string
	Value               string
	ExpiresEpochSeconds int64
	Domain              string
	Path                string
}

// Expired reports whether the cookie expiry lies before now.
func (c AuthCredential) Expired(now time.Time) bool {
	return c.ExpiresEpochSeconds > 0 && c.ExpiresEpochSeconds < now.Unix()
}

// ParseExpiry converts an ISO-8601 timestamp into epoch seconds. A trailing
// "Z" is rewritten to "+00:00" first; timestamps without an offset are read as UTC.
func ParseExpiry(iso string) (int64, error) {
	s := strings.TrimSpace(iso)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	s = strings.Replace(s, "Z", "+00:00", 1)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Unix(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized expiry timestamp %q", iso)
}
