package httpserver

import (
	"net/http"

	"sellmypi/internal/http/handlers"
	"sellmypi/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Transactions *handlers.TransactionsHandlers
	Users        *handlers.UsersHandlers
	Stats        http.HandlerFunc
	Health       http.HandlerFunc
}

// NewRouter wires HTTP routes. Order submission and owner history stay open
// (identity is asserted by the client-held token on the upload path);
// admin actions and anything destructive sit behind the auth middleware.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", deps.Health)

	mux.Handle("POST /api/transactions", http.HandlerFunc(deps.Transactions.Create))
	mux.Handle("GET /api/transactions/{ownerId}", http.HandlerFunc(deps.Transactions.OwnerHistory))

	authenticated := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	mux.Handle("GET /api/transactions", authenticated(deps.Transactions.List))
	mux.Handle("GET /api/transactions/export", authenticated(deps.Transactions.Export))
	mux.Handle("PUT /api/transactions/{id}/status", authenticated(deps.Transactions.UpdateStatus))
	mux.Handle("PUT /api/transactions/{id}/status/force", authenticated(deps.Transactions.ForceStatus))
	mux.Handle("DELETE /api/transactions/{id}", authenticated(deps.Transactions.Delete))

	mux.Handle("GET /api/stats", authenticated(deps.Stats))

	mux.Handle("GET /api/users", authenticated(deps.Users.List))
	mux.Handle("GET /api/users/{id}/export", authenticated(deps.Users.Export))
	mux.Handle("DELETE /api/users/{id}", authenticated(deps.Users.Delete))

	return mux
}
