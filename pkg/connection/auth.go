package connection

import (
	"fmt"
	"net/http"

	"github.com/apiobject/apiobject.go/pkg/constants"
)

// AuthMode selects how credentials are attached to each request. The modes
// are mutually exclusive.
type AuthMode string

const (
	// AuthStandard sends an Authorization header: Bearer <username> when no
	// password is set, Basic otherwise. It is the default.
	AuthStandard AuthMode = "standard"
	// AuthLegacyHeaders sends the username and password in a pair of custom
	// headers.
	AuthLegacyHeaders AuthMode = "legacy"
	// AuthTransport attaches nothing. The http.Client given to
	// SetHTTPClient (for example one with a Negotiate round tripper) is
	// expected to present the platform credentials.
	AuthTransport AuthMode = "transport"
)

const (
	LegacyUsernameHeader = "X-Api-Username"
	LegacyPasswordHeader = "X-Api-Password"
)

// Valid reports whether m is a known mode. The empty mode means AuthStandard.
func (m AuthMode) Valid() bool {
	switch m {
	case "", AuthStandard, AuthLegacyHeaders, AuthTransport:
		return true
	}
	return false
}

// Credentials are the client-scoped user settings, applied on every request.
type Credentials struct {
	Mode     AuthMode
	Username string
	Password string
}

// Apply attaches the credentials to req. Nothing is attached without a
// username.
func (c Credentials) Apply(req *http.Request) error {
	switch c.Mode {
	case AuthTransport:
		return nil
	case AuthLegacyHeaders:
		if c.Username == "" {
			return nil
		}
		req.Header.Set(LegacyUsernameHeader, c.Username)
		req.Header.Set(LegacyPasswordHeader, c.Password)
		return nil
	case "", AuthStandard:
		if c.Username == "" {
			return nil
		}
		if c.Password == "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Username))
			return nil
		}
		req.SetBasicAuth(c.Username, c.Password)
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownAuth, c.Mode)
	}
}
