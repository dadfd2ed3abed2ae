package browser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"go-wellfound-scraper/internal/domain"
)

// Cookie is one entry of the cookie file. The file is either an object keyed
// by cookie name or a browser-export array; expires may be an ISO-8601 string
// or epoch seconds.
type Cookie struct {
	Name    string          `json:"name"`
	Value   string          `json:"value"`
	Domain  string          `json:"domain"`
	Path    string          `json:"path"`
	Expires json.RawMessage `json:"expires"`
}

// CookieNames selects the two session cookies inside the cookie file.
type CookieNames struct {
	Primary string
	AntiBot string
}

// LoadAuthCookies reads the primary and anti-bot cookies for baseURL. The
// primary cookie is scoped to the bare host, the anti-bot cookie to the host
// and its subdomains, both on path "/" unless the file says otherwise.
func LoadAuthCookies(path, baseURL string, names CookieNames) ([]domain.AuthCredential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	entries, err := parseCookieFile(data)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	host, err := cookieHost(baseURL)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	wanted := []struct {
		key    string
		domain string
	}{
		{names.Primary, host},
		{names.AntiBot, "." + host},
	}

	creds := make([]domain.AuthCredential, 0, len(wanted))
	now := time.Now()
	for _, w := range wanted {
		c, ok := entries[w.key]
		if !ok {
			return nil, &domain.ConfigError{Path: path, Err: fmt.Errorf("cookie %q missing", w.key)}
		}
		cred, err := c.toCredential(w.key, w.domain)
		if err != nil {
			return nil, &domain.ConfigError{Path: path, Err: fmt.Errorf("cookie %q: %w", w.key, err)}
		}
		if cred.Expired(now) {
			// no refresh exists, the login may still succeed with the credentials
			log.Warn().Str("cookie", cred.Name).Time("expired_at", time.Unix(cred.ExpiresEpochSeconds, 0)).Msg("⚠️ session cookie already expired")
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

func parseCookieFile(data []byte) (map[string]Cookie, error) {
	var byName map[string]Cookie
	if err := json.Unmarshal(data, &byName); err == nil {
		return byName, nil
	}

	var list []Cookie
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse cookie file: %w", err)
	}
	byName = make(map[string]Cookie, len(list))
	for _, c := range list {
		byName[c.Name] = c
	}
	return byName, nil
}

func (c Cookie) toCredential(key, defaultDomain string) (domain.AuthCredential, error) {
	cred := domain.AuthCredential{
		Name:   c.Name,
		Value:  c.Value,
		Domain: defaultDomain,
		Path:   c.Path,
	}
	if cred.Name == "" {
		cred.Name = key
	}
	if cred.Value == "" {
		return cred, fmt.Errorf("empty value")
	}
	if c.Domain != "" {
		cred.Domain = c.Domain
	}
	if cred.Path == "" {
		cred.Path = "/"
	}

	expires, err := parseExpires(c.Expires)
	if err != nil {
		return cred, err
	}
	cred.ExpiresEpochSeconds = expires
	return cred, nil
}

func parseExpires(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var iso string
	if err := json.Unmarshal(raw, &iso); err == nil {
		return domain.ParseExpiry(iso)
	}
	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err != nil {
		return 0, fmt.Errorf("invalid expires %s", string(raw))
	}
	return int64(epoch), nil
}

func cookieHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid base url %q", baseURL)
	}
	return strings.TrimPrefix(u.Hostname(), "www."), nil
}

// ToPlaywright converts a credential into the cookie shape the browser context accepts.
func ToPlaywright(c domain.AuthCredential) playwright.OptionalCookie {
	pwCookie := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.ExpiresEpochSeconds > 0 {
		pwCookie.Expires = playwright.Float(float64(c.ExpiresEpochSeconds))
	}
	return pwCookie
}
