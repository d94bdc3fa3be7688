package connection

import (
	"crypto/tls"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	u, err := url.Parse("https://bob:pw@svc.example.com/api/v2/?x=1")
	require.NoError(t, err)

	cfg := NewConfig(u)

	assert.Equal(t, "https://svc.example.com/api/v2", cfg.BaseURL)
	assert.Equal(t, "bob", cfg.Username)
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, AuthStandard, cfg.AuthMode)
	assert.Equal(t, constants.DefaultHTTPTimeout, cfg.Timeout)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinTLSVersion)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	u, err := url.Parse("ftp://svc.example.com")
	require.NoError(t, err)
	assert.ErrorIs(t, NewConfig(u).Validate(), constants.ErrInvalidScheme)

	u, err = url.Parse("http://svc.example.com")
	require.NoError(t, err)
	cfg := NewConfig(u)
	cfg.AuthMode = "ntlm"
	assert.ErrorIs(t, cfg.Validate(), constants.ErrUnknownAuth)

	assert.ErrorIs(t, (&Config{}).Validate(), constants.ErrNoBaseURL)
}

const configYAML = `url: https://svc.example.com/api
username: alice
password: secret
auth_mode: legacy
timeout: 5s
min_tls_version: "1.3"
headers:
  X-Tenant: acme
`

func TestLoadConfig_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://svc.example.com/api", cfg.BaseURL)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, AuthLegacyHeaders, cfg.AuthMode)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinTLSVersion)
	// viper folds keys to lower case; header names are case-insensitive
	assert.Equal(t, "acme", cfg.Headers["x-tenant"])
}

func TestLoadConfig_envOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))
	t.Setenv("APIOBJECT_USERNAME", "carol")
	t.Setenv("APIOBJECT_AUTH_MODE", "standard")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "carol", cfg.Username)
	assert.Equal(t, AuthStandard, cfg.AuthMode)
}

func TestLoadConfig_missingFileUsesEnv(t *testing.T) {
	t.Setenv("APIOBJECT_URL", "http://localhost:8080")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, AuthStandard, cfg.AuthMode)
	assert.Equal(t, constants.DefaultHTTPTimeout, cfg.Timeout)
}

func TestLoadConfig_errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, constants.ErrNoBaseURL)

	t.Setenv("APIOBJECT_URL", "http://localhost:8080")
	t.Setenv("APIOBJECT_MIN_TLS_VERSION", "0.9")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, constants.ErrInvalidArgument)
}
