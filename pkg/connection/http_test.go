package connection

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/stretchr/testify/suite"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewTestClient returns *http.Client with Transport replaced to avoid making real calls
func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

func xmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		// Must be set to non-nil value or it panics
		Header: http.Header{"Content-Type": []string{"application/xml"}},
	}
}

type HTTPTestSuite struct {
	suite.Suite
	name string
}

func TestHttpTestSuite(t *testing.T) {
	ts := new(HTTPTestSuite)
	ts.name = "HTTP Test Suite"

	suite.Run(t, ts)
}

func (s *HTTPTestSuite) newConnection(fn RoundTripFunc) *HTTPConnection {
	u, err := url.Parse("https://svc.example.com/api/v2/")
	s.Require().NoError(err)

	cfg := NewConfig(u)
	cfg.Username = "alice"
	cfg.Password = "secret"
	cfg.Headers["X-Tenant"] = "acme"

	return New(cfg).SetHTTPClient(NewTestClient(fn))
}

func (s *HTTPTestSuite) TestDo_postWithBody() {
	var captured *http.Request
	var capturedBody []byte

	con := s.newConnection(func(req *http.Request) (*http.Response, error) {
		captured = req
		capturedBody, _ = io.ReadAll(req.Body)
		return xmlResponse(http.StatusOK, `<Contacts/>`), nil
	})

	res, err := con.Do(context.Background(), &Request{
		Path: []string{"select", "Contact"},
		Body: []byte(`<Contact/>`),
	})
	s.Require().NoError(err)

	s.Equal(http.MethodPost, captured.Method)
	s.Equal("https://svc.example.com/api/v2/select/Contact", captured.URL.String())
	s.Equal("application/xml", captured.Header.Get("Content-Type"))
	s.Equal("acme", captured.Header.Get("X-Tenant"))
	user, pass, ok := captured.BasicAuth()
	s.True(ok)
	s.Equal("alice", user)
	s.Equal("secret", pass)
	s.Equal(`<Contact/>`, string(capturedBody))

	s.Equal(http.StatusOK, res.StatusCode)
	s.Equal(`<Contacts/>`, string(res.Body))
	s.Equal("https://svc.example.com/api/v2/select/Contact", res.URL)
	s.NotEmpty(res.RequestID)
}

func (s *HTTPTestSuite) TestDo_getWithoutBody() {
	con := s.newConnection(func(req *http.Request) (*http.Response, error) {
		s.Equal(http.MethodGet, req.Method)
		s.Empty(req.Header.Get("Content-Type"))
		return xmlResponse(http.StatusOK, `<ok/>`), nil
	})

	_, err := con.Do(context.Background(), &Request{Path: []string{"function", "entry", "3", "CheckInOut"}})
	s.Require().NoError(err)
}

func (s *HTTPTestSuite) TestDo_escapesPathSegments() {
	con := s.newConnection(func(req *http.Request) (*http.Response, error) {
		s.Equal("/api/v2/getreport/Open%20Deals", req.URL.EscapedPath())
		return xmlResponse(http.StatusOK, `<ok/>`), nil
	})

	_, err := con.Do(context.Background(), &Request{Path: []string{"getreport", "Open Deals"}})
	s.Require().NoError(err)
}

func (s *HTTPTestSuite) TestDo_serviceError() {
	con := s.newConnection(func(req *http.Request) (*http.Response, error) {
		return xmlResponse(http.StatusBadRequest, `<Error><Message>NameLast is required</Message></Error>`), nil
	})

	res, err := con.Do(context.Background(), &Request{Path: []string{"update", "Contact", "1"}, Body: []byte(`<Contact/>`)})
	s.Require().Error(err, "should return error for status code 400")

	var serviceErr *ServiceError
	s.Require().True(errors.As(err, &serviceErr))
	s.Equal(http.StatusBadRequest, serviceErr.StatusCode)
	s.Equal("NameLast is required", serviceErr.Message)
	s.Contains(serviceErr.Body, "<Message>")

	s.Require().NotNil(res)
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *HTTPTestSuite) TestDo_transportError() {
	con := s.newConnection(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	res, err := con.Do(context.Background(), &Request{Path: []string{"select", "Contact"}})
	s.Require().ErrorIs(err, constants.ErrTransport)

	s.Require().NotNil(res)
	s.Equal(0, res.StatusCode)
	s.Contains(string(res.Body), "<Error><Message>")
	s.Contains(string(res.Body), "connection refused")
}

func (s *HTTPTestSuite) TestDo_noBaseURL() {
	con := &HTTPConnection{}

	_, err := con.Do(context.Background(), &Request{})
	s.ErrorIs(err, constants.ErrNoBaseURL)
}

func (s *HTTPTestSuite) TestDo_credentialFailureKeepsURL() {
	u, err := url.Parse("https://svc.example.com/api/v2")
	s.Require().NoError(err)

	cfg := NewConfig(u)
	cfg.Username = "alice"
	cfg.AuthMode = "ntlm"

	called := false
	con := New(cfg).SetHTTPClient(NewTestClient(func(req *http.Request) (*http.Response, error) {
		called = true
		return xmlResponse(http.StatusOK, `<ok/>`), nil
	}))

	res, err := con.Do(context.Background(), &Request{Path: []string{"select", "Contact"}})
	s.Require().ErrorIs(err, constants.ErrUnknownAuth)
	s.False(called)

	s.Require().NotNil(res)
	s.Equal("https://svc.example.com/api/v2/select/Contact", res.URL)
	s.NotEmpty(res.RequestID)
}
