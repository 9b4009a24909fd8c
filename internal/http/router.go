package http

import (
	"log/slog"
	"net/http"

	"shopdesk/backend/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(m.Instrument)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", handler.ListItems)
		r.Post("/items", handler.CreateItem)
		r.Post("/items/import-excel", handler.ImportItemsExcel)
		r.Get("/items/{id}", handler.GetItem)
		r.Put("/items/{id}", handler.UpdateItem)
		r.Delete("/items/{id}", handler.DeleteItem)

		r.Get("/cashandbank", handler.ListAccounts)
		r.Post("/cashandbank", handler.CreateAccount)
		r.Get("/cashandbank/{id}", handler.GetAccount)
		r.Put("/cashandbank/{id}", handler.UpdateAccount)
		r.Delete("/cashandbank/{id}", handler.DeleteAccount)
		r.Get("/cashandbank/{id}/transactions", handler.ListTransactions)
		r.Post("/cashandbank/{id}/transactions", handler.CreateTransaction)

		r.Get("/expense/categories", handler.ListExpenseCategories)
		r.Post("/expense/categories", handler.CreateExpenseCategory)
		r.Delete("/expense/categories/{id}", handler.DeleteExpenseCategory)
		r.Get("/expense", handler.ListExpenses)
		r.Post("/expense", handler.CreateExpense)
		r.Get("/expense/{id}", handler.GetExpense)
		r.Put("/expense/{id}", handler.UpdateExpense)
		r.Delete("/expense/{id}", handler.DeleteExpense)

		r.Get("/purchases", handler.ListPurchases)
		r.Post("/purchases", handler.CreatePurchase)
		r.Get("/purchases/{id}", handler.GetPurchase)
		r.Delete("/purchases/{id}", handler.DeletePurchase)

		r.Get("/user-role", handler.ListUserRoles)
		r.Post("/user-role", handler.CreateUserRole)
		r.Patch("/user-role/{id}", handler.PatchUserRole)

		r.Get("/company/edit-shop", handler.GetCompany)
		r.Put("/company/edit-shop", handler.UpdateCompany)
		r.Get("/print-data", handler.PrintData)

		r.Post("/invoices/render", handler.RenderInvoice)
		r.Get("/reports/categories/{category}", handler.CategoryReport)

		r.Post("/exports", handler.SubmitExport)
		r.Get("/exports/{id}", handler.ExportStatus)
		r.Get("/exports/{id}/download", handler.DownloadExport)
		r.Delete("/exports/{id}", handler.CancelExport)
	})

	return r
}
