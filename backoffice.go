// Package backoffice is the session and access-control core of a
// hotel-management administrative dashboard.
//
// The dashboard's data lives behind a remote REST API; this package owns the
// one piece of state the front end cannot delegate: the administrator's
// session. It provides:
//
//   - a SessionStore holding the current user and bearer token, persisted
//     through a pluggable key-value storage port and restored synchronously
//     at startup
//   - a RequireSession middleware guarding protected routes, preserving the
//     originally requested path across the login redirect
//   - a Client for the remote API that injects the session token and
//     translates 401 responses into a session-wide invalidation
//   - return-based HTTP handlers for the login, register, and logout
//     surface, plus proxy handlers for the CRUD screens
//
// # Quick start
//
//	svc, err := backoffice.New(backoffice.Config{
//		APIBaseURL: "http://localhost:8000/api",
//		Storage:    store,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc.Store.Initialize(ctx)
//
//	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
//		result := svc.LoginHandler(r)
//		w.WriteHeader(result.StatusCode)
//		json.NewEncoder(w).Encode(result)
//	})
//	r.With(backoffice.RequireSession(svc.Store)).Mount("/api", svc.DashboardRouter())
package backoffice

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hotelzen/backoffice/storage"
)

// Config carries the dependencies and settings for a backoffice service.
type Config struct {
	// APIBaseURL is the root of the remote hotel REST API, e.g.
	// "http://localhost:8000/api".
	APIBaseURL string

	// Storage persists the session pair. Defaults to an in-memory store,
	// which means sessions do not survive a restart.
	Storage storage.Interface

	// HTTPClient is used for all remote calls. Defaults to
	// http.DefaultClient; timeout policy belongs to this client.
	HTTPClient *http.Client

	// SealKey, when 32 bytes long, encrypts the persisted session values at
	// rest. Leave nil to store them verbatim.
	SealKey []byte

	// Callbacks hook session transitions.
	Callbacks Callbacks
}

// Service bundles the session store and API client with their shared
// validator.
type Service struct {
	Store  *SessionStore
	Client *Client
}

// New wires up a Service from the given configuration.
func New(cfg Config) (*Service, error) {
	if cfg.APIBaseURL == "" {
		return nil, errors.New("APIBaseURL is required")
	}

	st := cfg.Storage
	if st == nil {
		st = storage.NewMemory()
	}

	var sealKey *[32]byte
	if cfg.SealKey != nil {
		if len(cfg.SealKey) != 32 {
			return nil, errors.New("SealKey must be exactly 32 bytes")
		}
		sealKey = new([32]byte)
		copy(sealKey[:], cfg.SealKey)
	}

	validate := validator.New()
	client := NewClient(cfg.APIBaseURL, cfg.HTTPClient)
	store := newSessionStore(st, client, validate, sealKey, cfg.Callbacks)
	client.bind(store)

	return &Service{Store: store, Client: client}, nil
}
