package connection

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
)

// Request is one call to the service.
type Request struct {
	// Path segments below the base URL, e.g. select/Contact/12.
	Path []string
	// Body is the XML request document. A nil body is sent as GET.
	Body   []byte
	Header http.Header
}

// Method returns GET for requests without a body and POST otherwise.
func (r *Request) Method() string {
	if r.Body == nil {
		return http.MethodGet
	}
	return http.MethodPost
}

// Response is what came back, or a synthesized error document when nothing
// came back.
type Response struct {
	RequestID  string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ServiceError is returned for a response with a non-2xx status. Body keeps
// the raw error document for diagnostics.
type ServiceError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.StatusCode)
}

// NewServiceError reads the message out of an error document. The message is
// the first <Message> element, else the root text, else the status text.
func NewServiceError(status int, body []byte) *ServiceError {
	e := &ServiceError{StatusCode: status, Body: string(body)}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err == nil && doc.Root() != nil {
		if el := doc.FindElement("//" + constants.ErrorMessageTag); el != nil {
			e.Message = strings.TrimSpace(el.Text())
		} else {
			e.Message = strings.TrimSpace(doc.Root().Text())
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	return e
}

// transportErrorDocument stands in for the response body when the request
// never got a response.
func transportErrorDocument(err error) []byte {
	doc := etree.NewDocument()
	root := doc.CreateElement(constants.ErrorTag)
	root.CreateElement(constants.ErrorMessageTag).SetText(err.Error())

	b, werr := doc.WriteToBytes()
	if werr != nil {
		return []byte(fmt.Sprintf("<%s/>", constants.ErrorTag))
	}
	return b
}
