// Command backoffice runs the hotel dashboard's session gateway: it owns
// the administrator session, guards the dashboard API, and proxies CRUD
// calls to the remote hotel REST API.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	backoffice "github.com/hotelzen/backoffice"
	"github.com/hotelzen/backoffice/storage"
)

type config struct {
	Addr          string     `env:"BACKOFFICE_ADDR" envDefault:":8080"`
	APIBaseURL    string     `env:"BACKOFFICE_API_BASE_URL" envDefault:"http://localhost:8000/api"`
	StorageDriver string     `env:"BACKOFFICE_STORAGE_DRIVER" envDefault:"sqlite"`
	StorageDSN    string     `env:"BACKOFFICE_STORAGE_DSN" envDefault:"backoffice.db"`
	SealKey       string     `env:"BACKOFFICE_SEAL_KEY"`
	LogLevel      slog.Level `env:"BACKOFFICE_LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var sealKey []byte
	if cfg.SealKey != "" {
		sealKey, err = base64.StdEncoding.DecodeString(cfg.SealKey)
		if err != nil {
			return fmt.Errorf("decode seal key: %w", err)
		}
	}

	svc, err := backoffice.New(backoffice.Config{
		APIBaseURL: cfg.APIBaseURL,
		Storage:    st,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		SealKey:    sealKey,
	})
	if err != nil {
		return err
	}

	// Restore any persisted session before the first request is served.
	svc.Store.Initialize(ctx)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router(svc),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Back-office listening", "addr", cfg.Addr, "api", cfg.APIBaseURL)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg config) (storage.Interface, error) {
	switch cfg.StorageDriver {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		return storage.NewSQLite(cfg.StorageDSN)
	case "postgres":
		return storage.NewPostgres(ctx, cfg.StorageDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func router(svc *backoffice.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		// Landing point for the guard's redirect; the front end renders the
		// actual form and reads the navigation intent from the query.
		writeResult(w, http.StatusOK, map[string]string{
			"message": "authentication required",
			"next":    r.URL.Query().Get("next"),
		})
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		result := svc.LoginHandler(r)
		writeResult(w, result.StatusCode, result)
	})

	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		result := svc.RegisterHandler(r)
		writeResult(w, result.StatusCode, result)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		result := svc.LogoutHandler(r)
		writeResult(w, result.StatusCode, result)
	})

	r.Group(func(r chi.Router) {
		r.Use(backoffice.RequireSession(svc.Store))

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			result := svc.MeHandler(r)
			writeResult(w, result.StatusCode, result)
		})

		r.Mount("/api", svc.DashboardRouter())
	})

	return r
}

func writeResult(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
