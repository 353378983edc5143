// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package crmtest provides an in-memory CRM server for tests.
//
// It implements the subset of the CRM v3 REST surface the crm package uses:
// object create/read/update, equality search, associations and property
// provisioning. Every request is recorded so tests can assert on exact
// request bodies.
package crmtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Call is one recorded request.
type Call struct {
	Method         string
	Path           string
	Body           map[string]any
	IdempotencyKey string
}

// Properties returns the "properties" object of the body, if any.
func (c Call) Properties() map[string]any {
	if p, ok := c.Body["properties"].(map[string]any); ok {
		return p
	}
	return nil
}

// Association is one recorded edge.
type Association struct {
	FromType, FromID string
	ToType, ToID     string
	TypeID           int
}

type record struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Server is a fake CRM. Configure the exported knobs before issuing requests.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	objects      map[string]map[string]*record
	properties   map[string]bool
	nextID       int
	calls        []Call
	associations []Association

	failSearches bool
	failPaths    map[string]int // "METHOD /path-prefix" -> status
}

// NewServer starts a fake CRM that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		objects:    map[string]map[string]*record{},
		properties: map[string]bool{},
		nextID:     1000,
		failPaths:  map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.recordCall)
	r.Post("/crm/v3/objects/{type}/search", s.handleSearch)
	r.Post("/crm/v3/objects/{type}", s.handleCreate)
	r.Get("/crm/v3/objects/{type}/{id}", s.handleGet)
	r.Patch("/crm/v3/objects/{type}/{id}", s.handlePatch)
	r.Put("/crm/v3/objects/{from}/{fromID}/associations/{to}/{toID}/{typeID}", s.handleAssociate)
	r.Post("/crm/v3/properties/{object}", s.handleProperty)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores a record directly and returns its id.
func (s *Server) Seed(objectType string, props map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(objectType, props).ID
}

// Object returns a copy of a stored record's properties, or nil.
func (s *Server) Object(objectType, id string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.objects[objectType][id]
	if rec == nil {
		return nil
	}
	out := make(map[string]string, len(rec.Properties))
	for k, v := range rec.Properties {
		out[k] = v
	}
	return out
}

// Count returns how many records of a type exist.
func (s *Server) Count(objectType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects[objectType])
}

// Calls returns the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsMatching returns recorded requests with this method whose path
// starts with prefix.
func (s *Server) CallsMatching(method, prefix string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Associations returns the recorded edges.
func (s *Server) Associations() []Association {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Association, len(s.associations))
	copy(out, s.associations)
	return out
}

// FailSearches makes every search return 500 while on is true.
func (s *Server) FailSearches(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSearches = on
}

// FailPath answers requests with this method and path prefix with status.
// A status of 0 removes the rule.
func (s *Server) FailPath(method, prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + prefix
	if status == 0 {
		delete(s.failPaths, key)
		return
	}
	s.failPaths[key] = status
}

// ResetCalls forgets recorded requests but keeps stored records.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
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
			Body:           body,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		status := 0
		for key, code := range s.failPaths {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				status = code
				break
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"status": "error", "message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) insert(objectType string, props map[string]string) *record {
	if s.objects[objectType] == nil {
		s.objects[objectType] = map[string]*record{}
	}
	s.nextID++
	now := time.Now().UTC()
	rec := &record{ID: strconv.Itoa(s.nextID), Properties: map[string]string{}, CreatedAt: now, UpdatedAt: now}
	for k, v := range props {
		rec.Properties[k] = v
	}
	s.objects[objectType][rec.ID] = rec
	return rec
}

type searchBody struct {
	FilterGroups []struct {
		Filters []struct {
			PropertyName string `json:"propertyName"`
			Operator     string `json:"operator"`
			Value        string `json:"value"`
		} `json:"filters"`
	} `json:"filterGroups"`
	Limit int `json:"limit"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "type")
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSearches {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "search unavailable"})
		return
	}

	var results []record
	for _, rec := range s.sorted(objectType) {
		for _, g := range body.FilterGroups {
			match := true
			for _, f := range g.Filters {
				if f.Operator != "EQ" || !strings.EqualFold(rec.Properties[f.PropertyName], f.Value) {
					match = false
					break
				}
			}
			if match && len(g.Filters) > 0 {
				results = append(results, *rec)
				break
			}
		}
	}
	if body.Limit > 0 && len(results) > body.Limit {
		results = results[:body.Limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(results), "results": results})
}

func (s *Server) sorted(objectType string) []*record {
	recs := make([]*record, 0, len(s.objects[objectType]))
	for _, rec := range s.objects[objectType] {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, _ := strconv.Atoi(recs[i].ID)
		b, _ := strconv.Atoi(recs[j].ID)
		return a < b
	})
	return recs
}

type writeBody struct {
	Properties map[string]any `json:"properties"`
}

func stringify(props map[string]any) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	objectType := chi.URLParam(r, "type")
	var body writeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	props := stringify(body.Properties)

	s.mu.Lock()
	defer s.mu.Unlock()
	if objectType == "contacts" {
		email := strings.ToLower(props["email"])
		for _, rec := range s.objects[objectType] {
			if email != "" && strings.EqualFold(rec.Properties["email"], email) {
				writeJSON(w, http.StatusConflict, map[string]string{
					"status":  "error",
					"message": "Contact already exists. Existing ID: " + rec.ID,
				})
				return
			}
		}
	}
	rec := s.insert(objectType, props)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.objects[chi.URLParam(r, "type")][chi.URLParam(r, "id")]
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "resource not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var body writeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.objects[chi.URLParam(r, "type")][chi.URLParam(r, "id")]
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "resource not found"})
		return
	}
	for k, v := range stringify(body.Properties) {
		rec.Properties[k] = v
	}
	rec.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAssociate(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.Atoi(chi.URLParam(r, "typeID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad association type"})
		return
	}
	a := Association{
		FromType: chi.URLParam(r, "from"),
		FromID:   chi.URLParam(r, "fromID"),
		ToType:   chi.URLParam(r, "to"),
		ToID:     chi.URLParam(r, "toID"),
		TypeID:   typeID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[a.FromType][a.FromID] == nil || s.objects[a.ToType][a.ToID] == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "object not found"})
		return
	}
	s.associations = append(s.associations, a)
	writeJSON(w, http.StatusOK, map[string]string{"id": a.FromID})
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name required"})
		return
	}
	key := chi.URLParam(r, "object") + "." + body.Name

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.properties[key] {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "property already exists"})
		return
	}
	s.properties[key] = true
	writeJSON(w, http.StatusCreated, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
