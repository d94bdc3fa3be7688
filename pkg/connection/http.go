package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const contentTypeXML = "application/xml"

// HTTPConnection is the Transport over net/http.
type HTTPConnection struct {
	BaseURL string

	credentials Credentials
	headers     map[string]string
	httpClient  *http.Client
	logger      zerolog.Logger
}

func New(p *Config) *HTTPConnection {
	con := HTTPConnection{
		BaseURL:     p.BaseURL,
		credentials: p.Credentials(),
		headers:     make(map[string]string, len(p.Headers)),
		logger:      p.Logger,
	}
	for k, v := range p.Headers {
		con.headers[k] = v
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	minTLS := p.MinTLSVersion
	if minTLS == 0 {
		minTLS = constants.DefaultMinTLSVersion
	}

	con.httpClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: minTLS,
				//nolint:gosec // opt-in for test servers with self-signed certificates
				InsecureSkipVerify: p.InsecureSkipVerify,
			},
		},
	}

	return &con
}

func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.httpClient.Timeout = timeout
	return h
}

// SetHTTPClient replaces the http.Client. With AuthTransport this is where
// the platform credentials come from.
func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// SetHeader adds a header sent with every request.
func (h *HTTPConnection) SetHeader(key, value string) *HTTPConnection {
	h.headers[key] = value
	return h
}

// ResolveURL joins the base URL and the escaped path segments.
func (h *HTTPConnection) ResolveURL(path []string) string {
	escaped := make([]string, 0, len(path))
	for _, segment := range path {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return h.BaseURL + "/" + strings.Join(escaped, "/")
}

func (h *HTTPConnection) Do(ctx context.Context, r *Request) (*Response, error) {
	if h.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	res := &Response{
		RequestID: uuid.NewString(),
		URL:       h.ResolveURL(r.Path),
	}

	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method(), res.URL, body)
	if err != nil {
		return res, err
	}

	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	for k, values := range r.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", contentTypeXML)
	if r.Body != nil {
		req.Header.Set("Content-Type", contentTypeXML)
	}
	if err := h.credentials.Apply(req); err != nil {
		return res, err
	}

	h.logger.Debug().
		Str("request_id", res.RequestID).
		Str("method", req.Method).
		Str("url", res.URL).
		Int("bytes", len(r.Body)).
		Msg("sending request")

	if err := h.MakeRequest(req, res); err != nil {
		return res, err
	}

	return res, nil
}

// MakeRequest performs req and fills res. A response with a non-2xx status
// is returned as a *ServiceError.
func (h *HTTPConnection) MakeRequest(req *http.Request, res *Response) error {
	resp, err := h.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", constants.ErrTransport, err)
		res.Body = transportErrorDocument(err)
		h.logger.Warn().Err(err).Str("request_id", res.RequestID).Msg("request failed")
		return err
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.Header = resp.Header

	res.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: reading response: %w", constants.ErrTransport, err)
		res.Body = transportErrorDocument(err)
		h.logger.Warn().Err(err).Str("request_id", res.RequestID).Msg("request failed")
		return err
	}

	h.logger.Debug().
		Str("request_id", res.RequestID).
		Int("status", res.StatusCode).
		Int("bytes", len(res.Body)).
		Msg("received response")

	if res.OK() {
		return nil
	}

	serviceErr := NewServiceError(res.StatusCode, res.Body)
	h.logger.Warn().
		Str("request_id", res.RequestID).
		Int("status", res.StatusCode).
		Str("message", serviceErr.Message).
		Msg("service reported failure")

	return serviceErr
}
