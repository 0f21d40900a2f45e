package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/masarify/finance-tracker-backend/internal/api/handlers"
	custommiddleware "github.com/masarify/finance-tracker-backend/internal/api/middleware"
	"github.com/masarify/finance-tracker-backend/internal/config"
	"github.com/masarify/finance-tracker-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	investmentService *service.InvestmentService,
	valuationService *service.ValuationService,
	sweeperService *service.SweeperService,
	recordService *service.RecordService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		valuationHandler := handlers.NewValuationHandler(valuationService, sweeperService, investmentService)

		r.Route("/users/{userId}", func(r chi.Router) {
			investmentHandler := handlers.NewInvestmentHandler(investmentService)
			recordHandler := handlers.NewRecordHandler(recordService)

			r.Route("/investments", func(r chi.Router) {
				r.Post("/", investmentHandler.CreateInvestment)
				r.Get("/", investmentHandler.ListInvestments)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", investmentHandler.GetInvestment)
					r.Post("/close", investmentHandler.CloseInvestment)
					r.Post("/transactions", investmentHandler.CreateTransaction)
					r.Get("/transactions", investmentHandler.ListTransactions)
					r.Post("/installments/{number}/pay", investmentHandler.PayInstallment)
					r.Post("/installments/{number}/unpay", investmentHandler.UnpayInstallment)
					r.Put("/schedule", investmentHandler.UpdateSchedule)
				})
			})

			r.Route("/records", func(r chi.Router) {
				r.Post("/", recordHandler.CreateRecord)
				r.Get("/", recordHandler.ListRecords)
			})

			r.Get("/valuation", valuationHandler.Valuate)
			r.Post("/valuation/recalculate", valuationHandler.Recalculate)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/sweep-maturities", valuationHandler.SweepMaturities)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Post("/feed-token", valuationHandler.SetFeedToken)
		})
	})

	return r
}
