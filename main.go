package main

//go:generate swag init

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dukahub/backoffice/db"
	_ "github.com/dukahub/backoffice/docs"
	"github.com/dukahub/backoffice/handlers"
	"github.com/dukahub/backoffice/ledger"
	"github.com/dukahub/backoffice/notify"
)

// @title           Duka Back Office API
// @version         1.0.0
// @description     Retail back-office API: product catalog, invoices with payment and delivery workflow, supplier lists, and payment-feed reconciliation.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.basic  BasicAuth

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env")
	}

	// Configure structured logging
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Open database
	database, err := db.Open()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Wire shared collaborators for handlers
	store := db.NewStore(database)
	dispatcher := notify.NewDispatcher(
		notify.LogChannel{ChannelName: "sms"},
		notify.LogChannel{ChannelName: "email"},
	)
	handlers.DB = database
	handlers.Store = store
	handlers.Ledger = ledger.NewService(store, dispatcher)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.BasicAuth)

		// Products
		r.Get("/products", handlers.ListProducts)
		r.Post("/products", handlers.CreateProduct)
		r.Get("/products/{id}", handlers.GetProduct)
		r.Put("/products/{id}", handlers.UpdateProduct)
		r.Delete("/products/{id}", handlers.DeleteProduct)

		// Customers
		r.Get("/customers", handlers.ListCustomers)
		r.Post("/customers", handlers.CreateCustomer)
		r.Get("/customers/{id}", handlers.GetCustomer)
		r.Put("/customers/{id}", handlers.UpdateCustomer)
		r.Delete("/customers/{id}", handlers.DeleteCustomer)

		// Suppliers
		r.Get("/suppliers", handlers.ListSuppliers)
		r.Post("/suppliers", handlers.CreateSupplier)
		r.Get("/suppliers/{id}", handlers.GetSupplier)
		r.Put("/suppliers/{id}", handlers.UpdateSupplier)
		r.Delete("/suppliers/{id}", handlers.DeleteSupplier)

		// Invoices and their workflow
		r.Get("/invoices", handlers.ListInvoices)
		r.Post("/invoices", handlers.CreateInvoice)
		r.Post("/invoices/preview", handlers.PreviewTotals)
		r.Get("/invoices/{id}", handlers.GetInvoice)
		r.Put("/invoices/{id}", handlers.UpdateInvoice)
		r.Delete("/invoices/{id}", handlers.DeleteInvoice)
		r.Post("/invoices/{id}/finalize", handlers.FinalizeInvoice)
		r.Post("/invoices/{id}/cancel", handlers.CancelInvoice)
		r.Get("/invoices/{id}/payments", handlers.ListPayments)
		r.Post("/invoices/{id}/payments", handlers.RecordPayment)
		r.Post("/invoices/{id}/delivery/dispatch", handlers.DispatchDelivery)
		r.Post("/invoices/{id}/delivery/complete", handlers.CompleteDelivery)

		// Payment feed transactions and reconciliation
		r.Get("/transactions", handlers.ListTransactions)
		r.Post("/transactions", handlers.CreateTransaction)
		r.Get("/transactions/{id}", handlers.GetTransaction)
		r.Get("/transactions/{id}/candidates", handlers.ListCandidates)
		r.Post("/transactions/{id}/match", handlers.ConfirmMatch)
		r.Post("/transactions/{id}/dispute", handlers.DisputeTransaction)

		// Dashboard
		r.Get("/dashboard", handlers.GetDashboard)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
