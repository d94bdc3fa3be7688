// Package mock provides a connection.Transport that answers from memory.
package mock

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/apiobject/apiobject.go/pkg/connection"
)

// Transport returns the same response for every request and records what
// it was sent.
type Transport struct {
	Status int
	Body   []byte
	// Err, when set, is returned together with the response.
	Err error

	mu       sync.Mutex
	requests []*connection.Request
}

// Create returns a Transport answering 200 with body.
func Create(body string) *Transport {
	return &Transport{Status: http.StatusOK, Body: []byte(body)}
}

func (t *Transport) Do(_ context.Context, req *connection.Request) (*connection.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()

	res := &connection.Response{
		RequestID:  "mock",
		URL:        "mock://" + strings.Join(req.Path, "/"),
		StatusCode: t.Status,
		Body:       t.Body,
	}
	if t.Err != nil {
		return res, t.Err
	}
	if !res.OK() {
		return res, connection.NewServiceError(res.StatusCode, res.Body)
	}

	return res, nil
}

// Requests returns what the Transport was sent.
func (t *Transport) Requests() []*connection.Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*connection.Request, len(t.requests))
	copy(out, t.requests)
	return out
}
