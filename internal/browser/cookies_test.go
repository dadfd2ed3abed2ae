package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wellfound-scraper/internal/domain"
)

var testNames = CookieNames{Primary: "_wellfound", AntiBot: "datadome"}

func writeCookies(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAuthCookies_KeyedByName(t *testing.T) {
	path := writeCookies(t, `{
		"_wellfound": {"name": "_wellfound", "value": "abc", "expires": "2025-01-01T00:00:00Z"},
		"datadome":   {"name": "datadome", "value": "xyz", "expires": "2025-01-01T00:00:00.000Z"}
	}`)

	creds, err := LoadAuthCookies(path, "https://wellfound.com/", testNames)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	assert.Equal(t, domain.AuthCredential{
		Name: "_wellfound", Value: "abc", ExpiresEpochSeconds: 1735689600, Domain: "wellfound.com", Path: "/",
	}, creds[0])
	assert.Equal(t, "datadome", creds[1].Name)
	assert.Equal(t, ".wellfound.com", creds[1].Domain)
	assert.Equal(t, int64(1735689600), creds[1].ExpiresEpochSeconds)
}

func TestLoadAuthCookies_BrowserExportArray(t *testing.T) {
	path := writeCookies(t, `[
		{"name": "other", "value": "1"},
		{"name": "_wellfound", "value": "abc", "expires": 1735689600, "path": "/app"},
		{"name": "datadome", "value": "xyz", "domain": ".example.org"}
	]`)

	creds, err := LoadAuthCookies(path, "https://www.wellfound.com", testNames)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	assert.Equal(t, "wellfound.com", creds[0].Domain)
	assert.Equal(t, "/app", creds[0].Path)
	assert.Equal(t, int64(1735689600), creds[0].ExpiresEpochSeconds)
	assert.Equal(t, ".example.org", creds[1].Domain)
	assert.Zero(t, creds[1].ExpiresEpochSeconds)
}

func TestLoadAuthCookies_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing anti-bot cookie", `{"_wellfound": {"value": "abc"}}`},
		{"empty value", `{"_wellfound": {"value": ""}, "datadome": {"value": "x"}}`},
		{"bad expiry", `{"_wellfound": {"value": "a", "expires": "tomorrow"}, "datadome": {"value": "x"}}`},
		{"not json", `cookies!`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAuthCookies(writeCookies(t, tt.body), "https://wellfound.com/", testNames)
			var cfgErr *domain.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	_, err := LoadAuthCookies(filepath.Join(t.TempDir(), "absent.json"), "https://wellfound.com/", testNames)
	assert.Error(t, err)
}

func TestToPlaywright(t *testing.T) {
	c := ToPlaywright(domain.AuthCredential{Name: "datadome", Value: "xyz", ExpiresEpochSeconds: 10, Domain: ".wellfound.com", Path: "/"})
	assert.Equal(t, "datadome", c.Name)
	require.NotNil(t, c.Domain)
	assert.Equal(t, ".wellfound.com", *c.Domain)
	require.NotNil(t, c.Expires)
	assert.Equal(t, float64(10), *c.Expires)

	session := ToPlaywright(domain.AuthCredential{Name: "a", Value: "b", Domain: "x", Path: "/"})
	assert.Nil(t, session.Expires)
}
