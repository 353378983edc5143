// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/awardsync/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	adminAuth     func(http.Handler) http.Handler
}

// NewRouter creates a router. adminAuth guards /api/v1/admin and must not be
// nil; pass auth.AdminAuth.Middleware.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, adminAuth func(http.Handler) http.Handler) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMW, adminAuth: adminAuth}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// Applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/categories", h.Categories)
			r.Get("/nominees", h.Directory)
			r.Get("/nominees/{slug}", h.Nominee)
		})

		r.With(router.chiMiddleware.RateLimitNominate()).Post("/nominations", h.CreateNomination)
		r.With(router.chiMiddleware.RateLimitVote()).Post("/votes", h.CreateVote)

		r.Route("/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAdmin())
			r.Use(router.adminAuth)

			r.Get("/nominations", h.AdminListNominations)
			r.Get("/nominations/{id}", h.AdminGetNomination)
			r.Post("/nominations/{id}/approve", h.ApproveNomination)
			r.Post("/nominations/{id}/reject", h.RejectNomination)
			r.Post("/nominations/{id}/resync", h.ResyncNomination)

			r.Get("/outbox", h.AdminOutbox)
			r.Post("/outbox/{id}/requeue", h.RequeueOutboxJob)
		})
	})

	return r
}
