package connection

import (
	"context"
)

// Transport sends a request and returns the response.
//
// When a response arrives with a non-2xx status, Do returns it together with
// a *ServiceError. When no response arrives, Do returns a response holding a
// synthesized error document and an error wrapping constants.ErrTransport.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}
