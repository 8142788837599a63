// Package httpapi exposes the sync server's JSON API over HTTP.
//
// All routes live under /api/v1. Authentication uses bearer JWTs issued by
// the user service; the refresh endpoint rotates the long-lived refresh
// token.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/alarmify/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler bundles the services the API dispatches to.
type Handler struct {
	users     UserProvider
	snapshots SnapshotProvider
	devices   DeviceProvider
	secret    []byte
	logger    logging.Logger
}

func NewHandler(users UserProvider, snapshots SnapshotProvider, devices DeviceProvider, secret []byte, logger logging.Logger) *Handler {
	return &Handler{
		users:     users,
		snapshots: snapshots,
		devices:   devices,
		secret:    secret,
		logger:    logger,
	}
}

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.handlePing)
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/refresh", h.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Put("/snapshot", h.handlePushSnapshot)
			r.Get("/snapshot", h.handlePullSnapshot)
			r.Get("/devices", h.handleListDevices)
			r.Put("/devices/{id}", h.handleRegisterDevice)
		})
	})

	return r
}
