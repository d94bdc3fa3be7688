package connection

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/apiobject/apiobject.go/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config keys, also readable from APIOBJECT_<KEY> environment variables.
const (
	cfgKeyURL                = "url"
	cfgKeyUsername           = "username"
	cfgKeyPassword           = "password"
	cfgKeyAuthMode           = "auth_mode"
	cfgKeyHeaders            = "headers"
	cfgKeyTimeout            = "timeout"
	cfgKeyMinTLSVersion      = "min_tls_version"
	cfgKeyInsecureSkipVerify = "insecure_skip_verify"

	envPrefix = "APIOBJECT"
)

var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Config holds everything a connection needs. TLS settings live here rather
// than in any process-wide state.
type Config struct {
	URL     url.URL
	BaseURL string

	Username string
	Password string
	AuthMode AuthMode

	// Headers are added to every request.
	Headers map[string]string

	Timeout            time.Duration
	MinTLSVersion      uint16
	InsecureSkipVerify bool

	Logger zerolog.Logger
}

// NewConfig creates a new Config for the service rooted at u, such as
// "https://example.com/api/v1". User info in the URL becomes the username
// and password and is stripped from BaseURL.
func NewConfig(u *url.URL) *Config {
	base := *u
	base.User = nil
	base.RawQuery = ""
	base.Fragment = ""

	c := &Config{
		URL:           *u,
		BaseURL:       strings.TrimRight(base.String(), "/"),
		AuthMode:      AuthStandard,
		Headers:       map[string]string{},
		Timeout:       constants.DefaultHTTPTimeout,
		MinTLSVersion: constants.DefaultMinTLSVersion,
		Logger:        logger.Nop(),
	}

	if u.User != nil {
		c.Username = u.User.Username()
		c.Password, _ = u.User.Password()
	}

	return c
}

// Credentials returns the credential settings of c.
func (c *Config) Credentials() Credentials {
	return Credentials{Mode: c.AuthMode, Username: c.Username, Password: c.Password}
}

// Validate checks the fields a connection cannot work without.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if c.URL.Scheme != constants.HTTPScheme && c.URL.Scheme != constants.HTTPSecureScheme {
		return fmt.Errorf("%w: %q", constants.ErrInvalidScheme, c.URL.Scheme)
	}
	if !c.AuthMode.Valid() {
		return fmt.Errorf("%w: %q", constants.ErrUnknownAuth, c.AuthMode)
	}
	return nil
}

// LoadConfig reads a YAML (or any viper-supported) config file and
// APIOBJECT_* environment variables, the latter taking precedence.
// An empty path or a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAuthMode, string(AuthStandard))
	v.SetDefault(cfgKeyTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(cfgKeyMinTLSVersion, "1.2")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	raw := v.GetString(cfgKeyURL)
	if raw == "" {
		return nil, constants.ErrNoBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfgKeyURL, err)
	}

	c := NewConfig(u)
	if v.IsSet(cfgKeyUsername) {
		c.Username = v.GetString(cfgKeyUsername)
	}
	if v.IsSet(cfgKeyPassword) {
		c.Password = v.GetString(cfgKeyPassword)
	}
	c.AuthMode = AuthMode(v.GetString(cfgKeyAuthMode))
	c.Timeout = v.GetDuration(cfgKeyTimeout)
	c.InsecureSkipVerify = v.GetBool(cfgKeyInsecureSkipVerify)
	for k, val := range v.GetStringMapString(cfgKeyHeaders) {
		c.Headers[k] = val
	}

	tlsVersion, ok := tlsVersions[v.GetString(cfgKeyMinTLSVersion)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", constants.ErrInvalidArgument, cfgKeyMinTLSVersion, v.GetString(cfgKeyMinTLSVersion))
	}
	c.MinTLSVersion = tlsVersion

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}
