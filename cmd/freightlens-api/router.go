// Package main provides the API router setup.
package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/freightlens/freightlens/cmd/freightlens-api/handlers"
	"github.com/freightlens/freightlens/cmd/freightlens-api/middleware"
	"github.com/freightlens/freightlens/internal/compare"
	"github.com/freightlens/freightlens/internal/config"
	"github.com/freightlens/freightlens/internal/convert"
	"github.com/freightlens/freightlens/internal/extract"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
	"github.com/freightlens/freightlens/internal/session"
)

// NewRouter wires services from configuration and returns the API router
// plus a cleanup function for the session store.
func NewRouter(cfg *config.Config, logger *observability.Logger) (http.Handler, func() error, error) {
	converter, err := newConverter(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	client := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	}, logger)

	extractor := extract.NewService(client, logger)
	comparator := compare.NewService(client, logger)
	manager := session.NewManager(store, converter, extractor, comparator, logger)

	convertHandler := handlers.NewConvertHandler(logger, converter, cfg.Server.MaxUploadBytes)
	extractHandler := handlers.NewExtractHandler(logger, extractor, cfg.Server.MaxUploadBytes)
	compareHandler := handlers.NewCompareHandler(logger, comparator)
	sessionHandler := handlers.NewSessionHandler(logger, manager, cfg.Server.MaxUploadBytes)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"freightlens"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			Token:   cfg.Auth.Token,
		}))

		r.Post("/convert", convertHandler.Convert)

		r.Post("/extract", extractHandler.ShippingOrder)
		r.Post("/extract/invoice", extractHandler.Invoice)

		r.Post("/compare", compareHandler.Compare)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/upload", sessionHandler.Upload)
				r.Put("/selection", sessionHandler.Selection)
				r.Post("/extract", sessionHandler.Extract)
			})
		})

		r.Route("/comparisons", func(r chi.Router) {
			r.Post("/", sessionHandler.Compare)
			r.Get("/{firstSessionID}/{secondSessionID}", sessionHandler.GetComparison)
		})
	})

	return r, store.Close, nil
}

func newConverter(cfg *config.Config, logger *observability.Logger) (convert.Converter, error) {
	switch cfg.Convert.Provider {
	case "local":
		return convert.NewLocalConverter(logger), nil
	case "", "remote":
		return convert.NewRemoteConverter(convert.RemoteConfig{
			BaseURL: cfg.Convert.Remote.BaseURL,
			Secret:  cfg.Convert.Remote.Secret,
			Format:  cfg.Convert.Remote.Format,
			Timeout: cfg.Convert.Remote.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown convert provider %q", cfg.Convert.Provider)
	}
}

func newStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "redis":
		return session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
			PoolSize: cfg.Session.Redis.PoolSize,
			TTL:      cfg.Session.TTL,
		})
	case "", "memory":
		return session.NewMemoryStore(cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
