package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/kimchiscan/server/internal/arbitrage"
	"github.com/kimchiscan/server/internal/catalog"
	"github.com/kimchiscan/server/internal/fxrate"
	"github.com/kimchiscan/server/internal/httpclient"
	"github.com/kimchiscan/server/internal/ingest"
)

// Server is the thin read surface over the core services.
type Server struct {
	calculator *arbitrage.Calculator
	fx         *fxrate.Service
	ingestor   *ingest.Ingestor
	syncer     *catalog.Syncer
}

func New(calculator *arbitrage.Calculator, fx *fxrate.Service, syncer *catalog.Syncer, ingestor *ingest.Ingestor) *Server {
	return &Server{
		calculator: calculator,
		fx:         fx,
		ingestor:   ingestor,
		syncer:     syncer,
	}
}

// Router assembles the /api/v1 surface with permissive CORS and request
// logging.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}))
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/arbitrage", s.handleArbitrageList)
		r.Get("/arbitrage/{symbol}", s.handleArbitrage)
		r.Get("/kimchi-history", s.handleKimchiHistory)
		r.Get("/exchange-rate", s.handleExchangeRate)
		r.Post("/admin/sync-coins", s.handleSyncCoins)
		r.Post("/admin/ingest-now", s.handleIngestNow)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request",
			"elapsed", time.Since(started).Round(time.Millisecond).String(),
			"method", r.Method,
			"path", r.URL.Path,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the core error taxonomy onto HTTP statuses: missing prices
// → 404, upstream transport → 502, everything else → 500. Bad user input is
// mapped before the core is called and arrives here already as a 400.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, arbitrage.ErrPriceNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case httpclient.IsTransport(err), errors.Is(err, fxrate.ErrExternalAPI):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
