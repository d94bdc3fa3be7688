package connection

import (
	"net/http"
	"testing"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Apply(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  http.Header
	}{
		{
			name:  "standard with password is basic",
			creds: Credentials{Mode: AuthStandard, Username: "alice", Password: "secret"},
			want:  http.Header{"Authorization": []string{"Basic YWxpY2U6c2VjcmV0"}},
		},
		{
			name:  "standard without password is bearer",
			creds: Credentials{Username: "tok-123"},
			want:  http.Header{"Authorization": []string{"Bearer tok-123"}},
		},
		{
			name:  "standard without username attaches nothing",
			creds: Credentials{Mode: AuthStandard},
			want:  http.Header{},
		},
		{
			name:  "legacy headers",
			creds: Credentials{Mode: AuthLegacyHeaders, Username: "alice", Password: "secret"},
			want: http.Header{
				LegacyUsernameHeader: []string{"alice"},
				LegacyPasswordHeader: []string{"secret"},
			},
		},
		{
			name:  "transport delegation attaches nothing",
			creds: Credentials{Mode: AuthTransport, Username: "alice", Password: "secret"},
			want:  http.Header{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "http://localhost/", http.NoBody)
			require.NoError(t, err)

			require.NoError(t, tt.creds.Apply(req))
			assert.Equal(t, tt.want, req.Header)
		})
	}
}

func TestCredentials_Apply_unknownMode(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/", http.NoBody)
	require.NoError(t, err)

	err = Credentials{Mode: "kerberos", Username: "a"}.Apply(req)
	assert.ErrorIs(t, err, constants.ErrUnknownAuth)
}
