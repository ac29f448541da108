// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package web serves the dashboard surface: the published link and snapshot
// files, the per-slot join redirect pages, health and metrics endpoints,
// and optionally the static dashboard assets.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/store"
)

// Router serves the published files and join redirects.
type Router struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRouter builds the HTTP surface for the dashboard.
func NewRouter(cfg *config.Config, logger zerolog.Logger) *Router {
	return &Router{
		cfg:    cfg,
		logger: logger.With().Str("component", "web").Logger(),
	}
}

// Handler assembles the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(httprate.LimitByIP(300, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         86400,
	}))

	// The dashboard polls these with cache-busting query params; no-store
	// keeps intermediaries from serving a stale copy anyway.
	r.Get("/links.txt", rt.handleLinks)
	r.Get("/players.json", rt.handlePlayers)

	r.Get("/s{slot:[0-9]+}c/", rt.handleJoinRedirect)
	r.Get("/s{slot:[0-9]+}c", rt.handleJoinRedirect)

	r.Get("/healthz", rt.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	if rt.cfg.Server.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(rt.cfg.Server.StaticDir)))
	}

	return r
}

// handleLinks serves the raw link file: one line per slot, empty line for
// an unresolved slot. A missing file serves the all-empty shape rather
// than a 404 so the dashboard's parser never sees a short read.
func (rt *Router) handleLinks(w http.ResponseWriter, r *http.Request) {
	links, err := store.ReadLinks(rt.cfg.Files.Links, rt.cfg.Files.Slots)
	if err != nil {
		rt.logger.Debug().Err(err).Msg("Link file unavailable, serving empty links")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	for _, link := range links {
		w.Write([]byte(link + "\n"))
	}
}

func (rt *Router) handlePlayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	data, err := store.ReadSnapshotRaw(rt.cfg.Files.Players)
	if err != nil {
		rt.logger.Debug().Err(err).Msg("Snapshot unavailable, serving empty document")
		w.Write([]byte(`{"updatedAt":null,"results":[]}` + "\n"))
		return
	}
	w.Write(data)
}

// handleJoinRedirect sends the visitor into the slot's current lobby, or
// 410 Gone when the slot has no resolved link right now. Gone rather than
// Not Found: the page exists, the lobby does not.
func (rt *Router) handleJoinRedirect(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || slot < 1 || slot > rt.cfg.Files.Slots {
		http.NotFound(w, r)
		return
	}

	links, err := store.ReadLinks(rt.cfg.Files.Links, rt.cfg.Files.Slots)
	if err != nil {
		rt.logger.Debug().Err(err).Msg("Link file unavailable for join redirect")
	}

	link := links[slot-1]
	if link == "" {
		w.Header().Set("Cache-Control", "no-store")
		http.Error(w, "lobby link is not available right now", http.StatusGone)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link, http.StatusFound)
}

func (rt *Router) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}
