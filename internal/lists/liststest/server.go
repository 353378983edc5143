// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package liststest provides an in-memory list platform server for tests.
package liststest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Call is one recorded request.
type Call struct {
	Method         string
	Path           string
	Query          string
	Body           map[string]any
	IdempotencyKey string
}

// Server is a fake list platform.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	contacts  map[string]map[string]any // email -> stored fields
	lists     []map[string]any
	nextID    int
	calls     []Call
	failPaths map[string]int
}

// NewServer starts a fake list platform that knows the given list ids.
func NewServer(t testing.TB, listIDs ...string) *Server {
	t.Helper()
	s := &Server{
		contacts:  map[string]map[string]any{},
		failPaths: map[string]int{},
	}
	for i, id := range listIDs {
		s.lists = append(s.lists, map[string]any{"id": id, "name": "List " + strconv.Itoa(i+1), "isPublic": false})
	}

	r := chi.NewRouter()
	r.Use(s.recordCall)
	r.Get("/contacts/find", s.handleFind)
	r.Post("/contacts/create", s.handleCreate)
	r.Put("/contacts/update", s.handleUpdate)
	r.Get("/lists", s.handleLists)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Contact returns a copy of the stored contact, or nil.
func (s *Server) Contact(email string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.contacts[strings.ToLower(email)]
	if c == nil {
		return nil
	}
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Subscribed reports the stored membership of email in list id.
func (s *Server) Subscribed(email, listID string) bool {
	c := s.Contact(email)
	if c == nil {
		return false
	}
	lists, _ := c["mailingLists"].(map[string]any)
	on, _ := lists[listID].(bool)
	return on
}

// Count returns the number of stored contacts.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

// Calls returns the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns recorded requests with this method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// FailPath answers method+path with status; 0 removes the rule.
func (s *Server) FailPath(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failPaths, method+" "+path)
		return
	}
	s.failPaths[method+" "+path] = status
}

func (s *Server) recordCall(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		r.Body = io.NopCloser(strings.NewReader(string(data)))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:         r.Method,
			Path:           r.URL.Path,
			Query:          r.URL.RawQuery,
			Body:           body,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		status := s.failPaths[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]any{"success": false, "message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.contacts[strings.ToLower(r.URL.Query().Get("email"))]
	if c == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, []any{c})
}

func decodeContact(r *http.Request) (map[string]any, string, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "", false
	}
	email, _ := body["email"].(string)
	return body, strings.ToLower(email), email != ""
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, email, ok := decodeContact(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "email required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contacts[email] != nil {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Email or userId is already on list."})
		return
	}
	s.nextID++
	id := "lc_" + strconv.Itoa(s.nextID)
	stored := map[string]any{"id": id}
	merge(stored, body)
	s.contacts[email] = stored
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// handleUpdate creates the contact when missing, like the real platform.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, email, ok := decodeContact(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "email required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.contacts[email]
	if stored == nil {
		s.nextID++
		stored = map[string]any{"id": "lc_" + strconv.Itoa(s.nextID)}
		s.contacts[email] = stored
	}
	merge(stored, body)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": stored["id"]})
}

func merge(stored, body map[string]any) {
	for k, v := range body {
		if k == "mailingLists" {
			lists, _ := stored["mailingLists"].(map[string]any)
			if lists == nil {
				lists = map[string]any{}
			}
			incoming, _ := v.(map[string]any)
			for id, on := range incoming {
				lists[id] = on
			}
			stored["mailingLists"] = lists
			continue
		}
		stored[k] = v
	}
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.lists)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
