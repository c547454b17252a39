// Package dfserver is an in-memory stand-in for the DreamFactory system API,
// used by tests across the module.
package dfserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// Record is a stored record in wire form.
type Record = map[string]any

// RecordedRequest is one request the server received.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// Server is a fake DreamFactory instance.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string]*collection
	scripts     map[string]string
	events      map[string][]string
	config      Record
	constants   map[string]map[string]string
	environment Record
	requests    []RecordedRequest

	// Credentials accepted by the session endpoint. Empty disables login.
	Email    string
	Password string
	// SessionToken, when set, must be sent with every system request.
	SessionToken string
}

type collection struct {
	nextID    int
	order     []int
	records   map[int]Record
	relations map[string]bool
}

func newCollection(relations []dfapi.Relation) *collection {
	keys := make(map[string]bool, len(relations))
	for _, rel := range relations {
		keys[rel.Key] = true
	}

	return &collection{
		nextID:    1,
		records:   make(map[int]Record),
		relations: keys,
	}
}

// New starts a server. Close it when done.
func New() *Server {
	s := &Server{
		collections: map[string]*collection{
			dfapi.AppCodec.Path:           newCollection(dfapi.AppCodec.Relations),
			dfapi.AppGroupCodec.Path:      newCollection(dfapi.AppGroupCodec.Relations),
			dfapi.RoleCodec.Path:          newCollection(dfapi.RoleCodec.Relations),
			dfapi.UserCodec.Path:          newCollection(dfapi.UserCodec.Relations),
			dfapi.ServiceCodec.Path:       newCollection(dfapi.ServiceCodec.Relations),
			dfapi.EmailTemplateCodec.Path: newCollection(dfapi.EmailTemplateCodec.Relations),
			dfapi.DeviceCodec.Path:        newCollection(dfapi.DeviceCodec.Relations),
			dfapi.ProviderCodec.Path:      newCollection(dfapi.ProviderCodec.Relations),
			dfapi.ProviderUserCodec.Path:  newCollection(dfapi.ProviderUserCodec.Relations),
		},
		scripts: make(map[string]string),
		events:  make(map[string][]string),
		config:  Record{},
		constants: map[string]map[string]string{
			"verbs": {"GET": "1", "POST": "2", "PUT": "4", "PATCH": "8", "DELETE": "16"},
		},
		environment: Record{
			"server":   Record{"server_os": "linux", "release": "6.1", "host": "df-test"},
			"php_info": Record{"general": Record{"info": Record{"version": "8.2"}}},
		},
	}

	s.Server = httptest.NewServer(s.router())

	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.record)

	r.HandleFunc(constants.SessionPath, s.handleSession).Methods(http.MethodPost)

	system := r.PathPrefix(constants.SystemPrefix).Subrouter()
	system.Use(s.authenticate)

	system.HandleFunc("/script", s.handleListScripts).Methods(http.MethodGet)
	system.HandleFunc("/script/{id}", s.handleScript).Methods(http.MethodPut, http.MethodPost, http.MethodDelete)
	system.HandleFunc("/event", s.handleEvents).Methods(http.MethodGet, http.MethodPost, http.MethodDelete)
	system.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet, http.MethodPost)
	system.HandleFunc("/constant", s.handleListConstants).Methods(http.MethodGet)
	system.HandleFunc("/constant/{name}", s.handleConstant).Methods(http.MethodGet)
	system.HandleFunc("/environment", s.handleEnvironment).Methods(http.MethodGet)

	system.HandleFunc("/{resource}", s.handleCollection).
		Methods(http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete)
	system.HandleFunc("/{resource}/{id:[0-9]+}", s.handleRecord).Methods(http.MethodGet)

	return r
}

// Seed stores records directly and returns their ids.
func (s *Server) Seed(resource string, records ...Record) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[resource]
	ids := make([]int, 0, len(records))

	for _, record := range records {
		ids = append(ids, coll.insert(record))
	}

	return ids
}

// Records returns a copy of the stored records of resource in insert order.
func (s *Server) Records(resource string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[resource]
	records := make([]Record, 0, len(coll.order))

	for _, id := range coll.order {
		records = append(records, clone(coll.records[id]))
	}

	return records
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// LastRequest returns the most recent request, or the zero value.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return RecordedRequest{}
	}

	return s.requests[len(s.requests)-1]
}

// Script returns the stored body of a script.
func (s *Server) Script(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.scripts[id]

	return body, ok
}

// Listeners returns the listeners registered for an event.
func (s *Server) Listeners(event string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.events[event]...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		required := s.SessionToken
		s.mu.Unlock()

		if required != "" && r.Header.Get(constants.HeaderSessionToken) != required {
			writeError(w, http.StatusUnauthorized, "Session token is invalid or expired.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// RotateSession makes the current session token invalid.
func (s *Server) RotateSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SessionToken = token
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid login request.")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Email == "" || creds.Email != s.Email || creds.Password != s.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials supplied.")

		return
	}

	if s.SessionToken == "" {
		s.SessionToken = "session-" + strconv.Itoa(len(s.requests))
	}

	writeJSON(w, http.StatusOK, Record{
		"session_token": s.SessionToken,
		"session_id":    s.SessionToken,
		"id":            1,
		"name":          "Admin",
		"email":         creds.Email,
		"is_sys_admin":  true,
	})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[mux.Vars(r)["resource"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found.")

		return
	}

	switch r.Method {
	case http.MethodGet:
		s.list(w, r, coll)
	case http.MethodPost:
		s.create(w, r, coll)
	case http.MethodPatch:
		s.update(w, r, coll)
	case http.MethodDelete:
		s.remove(w, r, coll)
	}
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vars := mux.Vars(r)

	coll, ok := s.collections[vars["resource"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found.")

		return
	}

	id, _ := strconv.Atoi(vars["id"])

	record, ok := coll.records[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Record with identifier '%d' not found.", id))

		return
	}

	query := r.URL.Query()
	if query.Get(constants.ParamPackage) == "true" || query.Get(constants.ParamSDK) == "true" {
		w.Header().Set(constants.HeaderContentType, "application/zip")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "PK-%d-%s", id, query.Encode())

		return
	}

	writeJSON(w, http.StatusOK, coll.view(record, query))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, coll *collection) {
	query := r.URL.Query()

	matched, err := coll.selectRecords(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	total := len(matched)
	matched = paginate(matched, query)

	out := make([]Record, 0, len(matched))
	for _, record := range matched {
		out = append(out, coll.view(record, query))
	}

	body := Record{constants.RecordKey: out}
	if query.Get(constants.ParamIncludeCount) == "true" {
		body["meta"] = Record{"count": total}
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, coll *collection) {
	records, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	seen := make(map[string]bool)

	for _, record := range records {
		name, _ := record["name"].(string)
		if name == "" {
			continue
		}

		if seen[name] || coll.hasName(name) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Duplicate entry '%s' for key 'name'.", name))

			return
		}

		seen[name] = true
	}

	out := make([]Record, 0, len(records))
	for _, record := range records {
		id := coll.insert(record)
		out = append(out, clone(coll.records[id]))
	}

	writeJSON(w, http.StatusCreated, Record{constants.RecordKey: out})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, coll *collection) {
	records, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	for _, record := range records {
		id := toInt(record["id"])
		if _, exists := coll.records[id]; !exists {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Record with identifier '%d' not found.", id))

			return
		}
	}

	out := make([]Record, 0, len(records))

	for _, record := range records {
		id := toInt(record["id"])
		stored := coll.records[id]

		for key, value := range record {
			stored[key] = value
		}

		out = append(out, clone(stored))
	}

	writeJSON(w, http.StatusOK, Record{constants.RecordKey: out})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, coll *collection) {
	ids, err := parseIDs(r.URL.Query().Get(constants.ParamIDs))
	if err != nil || len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "No record identifiers were provided.")

		return
	}

	for _, id := range ids {
		if _, ok := coll.records[id]; !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Record with identifier '%d' not found.", id))

			return
		}
	}

	out := make([]Record, 0, len(ids))

	for _, id := range ids {
		coll.remove(id)
		out = append(out, Record{"id": id})
	}

	writeJSON(w, http.StatusOK, Record{constants.RecordKey: out})
}

func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	includeUser := r.URL.Query().Get(constants.ParamIncludeUserScripts) == "true"

	names := make([]string, 0, len(s.scripts))
	for name := range s.scripts {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]Record, 0, len(names))

	for _, name := range names {
		isUser := strings.HasPrefix(name, "user.")
		if isUser && !includeUser {
			continue
		}

		out = append(out, Record{"name": name, "type": "v8js", "script": s.scripts[name], "is_user_script": isUser})
	}

	writeJSON(w, http.StatusOK, Record{constants.ResourceKey: out})
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := url.PathUnescape(mux.Vars(r)["id"])

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.scripts[id] = string(body)
		writeJSON(w, http.StatusOK, Record{"name": id, "type": "v8js", "script": string(body)})
	case http.MethodPost:
		if _, ok := s.scripts[id]; !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Script '%s' not found.", id))

			return
		}

		query := r.URL.Query()
		params := make([]string, 0, len(query))
		for key := range query {
			if key != constants.ParamLogOutput {
				params = append(params, key+"="+query.Get(key))
			}
		}

		sort.Strings(params)
		writeJSON(w, http.StatusOK, "ran "+id+" "+strings.Join(params, "&"))
	case http.MethodDelete:
		if _, ok := s.scripts[id]; !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Script '%s' not found.", id))

			return
		}

		delete(s.scripts, id)
		writeJSON(w, http.StatusOK, Record{"name": id})
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodGet {
		names := make([]string, 0, len(s.events))
		for name := range s.events {
			names = append(names, name)
		}

		sort.Strings(names)

		out := make([]Record, 0, len(names))
		for _, name := range names {
			family, _, _ := strings.Cut(name, ".")
			out = append(out, Record{
				"name": family,
				"paths": []Record{{
					"path":  "/" + family,
					"verbs": []Record{{"type": "post", "event": []string{name}, "listeners": s.events[name]}},
				}},
			})
		}

		writeJSON(w, http.StatusOK, out)

		return
	}

	var envelope dfapi.Envelope[dfapi.EventRequest]

	err := json.NewDecoder(r.Body).Decode(&envelope)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event request.")

		return
	}

	for _, request := range envelope.Record {
		if r.Method == http.MethodPost {
			s.events[request.EventName] = append(s.events[request.EventName], request.Listeners...)

			continue
		}

		s.events[request.EventName] = without(s.events[request.EventName], request.Listeners)
		if len(s.events[request.EventName]) == 0 {
			delete(s.events, request.EventName)
		}
	}

	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		var update Record

		err := json.NewDecoder(r.Body).Decode(&update)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid config request.")

			return
		}

		for key, value := range update {
			s.config[key] = value
		}
	}

	writeJSON(w, http.StatusOK, s.config)
}

// SetConfig replaces the stored system config.
func (s *Server) SetConfig(config Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = config
}

func (s *Server) handleListConstants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.constants))
	for name := range s.constants {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]Record, 0, len(names))
	for _, name := range names {
		out = append(out, Record{"name": name})
	}

	writeJSON(w, http.StatusOK, Record{constants.ResourceKey: out})
}

func (s *Server) handleConstant(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, _ := url.PathUnescape(mux.Vars(r)["name"])

	values, ok := s.constants[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Constant '%s' not found.", name))

		return
	}

	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.environment)
}

func decodeEnvelope(w http.ResponseWriter, r *http.Request) ([]Record, bool) {
	var envelope dfapi.Envelope[Record]

	err := json.NewDecoder(r.Body).Decode(&envelope)
	if err != nil || envelope.Record == nil {
		writeError(w, http.StatusBadRequest, "No record(s) detected in request.")

		return nil, false
	}

	return envelope.Record, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Record{
		constants.ErrorKey: Record{"code": status, "message": message},
	})
}

func without(values, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, value := range remove {
		drop[value] = true
	}

	out := make([]string, 0, len(values))

	for _, value := range values {
		if !drop[value] {
			out = append(out, value)
		}
	}

	return out
}
