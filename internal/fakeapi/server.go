// Package fakeapi provides a fake record service for testing purposes.
// It speaks the XML-over-HTTP protocol of the client, keeps tables in memory
// and can be told to answer specific requests with canned responses,
// including service errors.
//
// Routing is done with gorilla/mux, one route per operation.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/beevik/etree"
	"github.com/gorilla/mux"
)

// RequestMatcher selects requests by operation and, optionally, by table.
type RequestMatcher struct {
	// Operation is the first path segment, e.g. "update".
	Operation string
	// Table is the second path segment. Empty matches any.
	Table string
}

// StubResponse answers matching requests with a fixed status and body
// instead of the in-memory store.
type StubResponse struct {
	Matcher RequestMatcher
	Status  int
	Body    string
	// Times limits how often the stub fires. Zero means always.
	Times int
}

// ErrorStub answers matching requests with an error document.
func ErrorStub(operation string, status int, message string) StubResponse {
	return StubResponse{
		Matcher: RequestMatcher{Operation: operation},
		Status:  status,
		Body:    fmt.Sprintf("<%s><%s>%s</%s></%s>", constants.ErrorTag, constants.ErrorMessageTag, message, constants.ErrorMessageTag, constants.ErrorTag),
	}
}

// CapturedRequest is a request as the server saw it.
type CapturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type table struct {
	template *etree.Element
	rows     map[int]*etree.Element
	nextID   int
}

// Server is a fake record service.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	mu       sync.Mutex
	stubs    []*StubResponse
	tables   map[string]*table
	reports  map[string][]*etree.Element
	queries  map[string][]*etree.Element
	requests []CapturedRequest
}

// NewServer creates a new fake service.
// Use "127.0.0.1:0" to bind to a random available port.
func NewServer(addr string) *Server {
	s := &Server{
		addr:    addr,
		tables:  make(map[string]*table),
		reports: make(map[string][]*etree.Element),
		queries: make(map[string][]*etree.Element),
	}

	r := mux.NewRouter()
	r.HandleFunc("/createdefault/{table}", s.handleCreateDefault).Methods(http.MethodPost)
	r.HandleFunc("/create/{table}", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/select/{table}", s.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/select/{table}/{id:[0-9]+}", s.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/update/{table}/{id:[0-9]+}", s.handleUpdate).Methods(http.MethodPost)
	r.HandleFunc("/delete/{table}/{id:[0-9]+}", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/getreport/{table}", s.handleReport).Methods(http.MethodPost)
	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/function/entry/{id:[0-9]+}/CheckInOut", s.handleCheckInOut).Methods(http.MethodGet)
	r.Use(s.capture, s.stub)

	s.server = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}

	return s
}

// DefineTable registers a table whose default template has the key field
// followed by the given fields, all empty.
func (s *Server) DefineTable(name string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl := etree.NewElement(name)
	tmpl.CreateElement(name + constants.PrimaryKeySuffix)
	for _, f := range fields {
		tmpl.CreateElement(f)
	}
	s.tables[name] = &table{template: tmpl, rows: make(map[int]*etree.Element), nextID: 1}
}

// Seed stores a row given as XML, e.g. <Contact><ContactID>1</ContactID>...</Contact>.
// It panics on malformed input, which is a bug in the test.
func (s *Server) Seed(rowXML string) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(rowXML); err != nil || doc.Root() == nil {
		panic(fmt.Sprintf("fakeapi: bad seed %q: %v", rowXML, err))
	}
	row := doc.Root()

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tableLocked(row.Tag)
	id, err := strconv.Atoi(childText(row, row.Tag+constants.PrimaryKeySuffix))
	if err != nil {
		panic(fmt.Sprintf("fakeapi: seed without integer key: %q", rowXML))
	}
	t.rows[id] = row.Copy()
	if id >= t.nextID {
		t.nextID = id + 1
	}
}

// SetReport registers the rows a report returns, each given as the inner XML
// of a <Record> element.
func (s *Server) SetReport(name string, rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[name] = genericRows(rows)
}

// SetQuery registers the rows a free-form query returns.
func (s *Server) SetQuery(text string, rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[text] = genericRows(rows)
}

// AddStubResponse adds a stub response configuration to the server.
// Stub responses are matched in the order they were added.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, &stub)
}

// Requests returns every request received so far.
func (s *Server) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CapturedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return CapturedRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// Row returns the stored row as XML, or "" if there is none.
func (s *Server) Row(tableName string, id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return ""
	}
	row, ok := t.rows[id]
	if !ok {
		return ""
	}
	return writeElement(row)
}

// Start starts the server and begins accepting connections.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return s.server.Close()
}

// Address returns the actual address the server is listening on.
// This is useful when using "127.0.0.1:0" to get the assigned port.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return "http://" + s.Address()
}

func (s *Server) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, CapturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) stub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		op := segments[0]
		tableName := ""
		if len(segments) > 1 {
			tableName = segments[1]
		}

		s.mu.Lock()
		var hit *StubResponse
		for _, st := range s.stubs {
			if st.Matcher.Operation != op {
				continue
			}
			if st.Matcher.Table != "" && st.Matcher.Table != tableName {
				continue
			}
			if st.Times < 0 {
				continue
			}
			hit = st
			if st.Times > 0 {
				st.Times--
				if st.Times == 0 {
					st.Times = -1
				}
			}
			break
		}
		s.mu.Unlock()

		if hit == nil {
			next.ServeHTTP(w, r)
			return
		}
		writeXML(w, hit.Status, hit.Body)
	})
}

func (s *Server) handleCreateDefault(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[mux.Vars(r)["table"]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	writeXML(w, http.StatusOK, writeElement(t.template))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["table"]

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tableLocked(name)
	id := t.nextID
	t.nextID++

	row := etree.NewElement(name)
	row.CreateElement(name + constants.PrimaryKeySuffix).SetText(strconv.Itoa(id))
	mergeRow(row, body)
	t.rows[id] = row

	writeXML(w, http.StatusOK, fmt.Sprintf("<Result><%[1]s>%[2]d</%[1]s></Result>", name+constants.PrimaryKeySuffix, id))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	name := vars["table"]

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tableLocked(name)
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	if raw, ok := vars["id"]; ok {
		id, _ := strconv.Atoi(raw)
		ids = []int{id}
	}

	out := etree.NewElement(name + "List")
	for _, id := range ids {
		row, ok := t.rows[id]
		if !ok || !matchRoot(row, body) {
			continue
		}
		out.AddChild(row.Copy())
	}

	limit(out, body)
	writeXML(w, http.StatusOK, writeElement(out))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	id, _ := strconv.Atoi(vars["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tableLocked(vars["table"]).rows[id]
	if !ok {
		writeError(w, http.StatusNotFound, "no such row")
		return
	}
	mergeRow(row, body)
	writeXML(w, http.StatusOK, "<Result>OK</Result>")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, _ := strconv.Atoi(vars["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tableLocked(vars["table"])
	if _, ok := t.rows[id]; !ok {
		writeError(w, http.StatusNotFound, "no such row")
		return
	}
	delete(t.rows, id)
	writeXML(w, http.StatusOK, "<Result>OK</Result>")
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.reports[mux.Vars(r)["table"]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown report")
		return
	}

	out := etree.NewElement("Report")
	for _, row := range rows {
		if matchRoot(row, body) {
			out.AddChild(row.Copy())
		}
	}
	writeXML(w, http.StatusOK, writeElement(out))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.queries[strings.TrimSpace(body.Text())]
	if !ok {
		writeError(w, http.StatusBadRequest, "query failed")
		return
	}

	out := etree.NewElement("Result")
	for _, row := range rows {
		out.AddChild(row.Copy())
	}
	writeXML(w, http.StatusOK, writeElement(out))
}

func (s *Server) handleCheckInOut(w http.ResponseWriter, _ *http.Request) {
	writeXML(w, http.StatusOK, "<Result>OK</Result>")
}

func (s *Server) tableLocked(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{template: etree.NewElement(name), rows: make(map[int]*etree.Element), nextID: 1}
		s.tables[name] = t
	}
	return t
}

func readBody(w http.ResponseWriter, r *http.Request) (*etree.Element, bool) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r.Body); err != nil || doc.Root() == nil {
		writeError(w, http.StatusBadRequest, "malformed request document")
		return nil, false
	}
	return doc.Root(), true
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeXML(w, status, ErrorStub("", status, message).Body)
}

func writeElement(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func genericRows(rows []string) []*etree.Element {
	out := make([]*etree.Element, 0, len(rows))
	for _, inner := range rows {
		doc := etree.NewDocument()
		if err := doc.ReadFromString("<" + constants.GenericRecordTag + ">" + inner + "</" + constants.GenericRecordTag + ">"); err != nil {
			panic(fmt.Sprintf("fakeapi: bad row %q: %v", inner, err))
		}
		out = append(out, doc.Root())
	}
	return out
}

// mergeRow applies a diff document to a stored row. Control nodes (leading
// underscore) are skipped. Sub-table entries are matched by their key
// attribute; entries without one are appended with a fresh key.
func mergeRow(row, diff *etree.Element) {
	for _, change := range diff.ChildElements() {
		if strings.HasPrefix(change.Tag, "_") {
			continue
		}

		if len(change.ChildElements()) == 0 && len(change.Attr) == 0 {
			target := row.SelectElement(change.Tag)
			if target == nil {
				target = row.CreateElement(change.Tag)
			}
			target.SetText(change.Text())
			continue
		}

		keyName := change.Tag + constants.PrimaryKeySuffix
		key := change.SelectAttrValue(keyName, "")
		var target *etree.Element
		if key != "" {
			for _, sub := range row.SelectElements(change.Tag) {
				if childText(sub, keyName) == key {
					target = sub
					break
				}
			}
		}
		if target == nil {
			target = row.CreateElement(change.Tag)
			if key == "" {
				key = strconv.Itoa(len(row.SelectElements(change.Tag)) * 1000)
			}
			target.CreateElement(keyName).SetText(key)
		}
		mergeRow(target, change)
	}
}
