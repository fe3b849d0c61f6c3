package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ekaraca/txbatch-backend/internal/api/handlers"
	"github.com/ekaraca/txbatch-backend/internal/config"
	"github.com/ekaraca/txbatch-backend/internal/middleware"
	"github.com/ekaraca/txbatch-backend/internal/services"
)

func NewRouter(cfg config.Config, ts *services.TransactionService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	th := handlers.NewTransactionsHandler(ts)

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Post("/", th.Create)
		r.Put("/batch-status", th.BatchUpdateStatus)
		r.Put("/batch-records", th.BatchProcessRecords)
		r.Get("/{id}", th.GetByID)
	})

	return r
}
