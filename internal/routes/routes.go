package routes

import (
	"net/http"

	"github.com/moneywise/moneywise/internal/app"
	"github.com/moneywise/moneywise/internal/handler"
	"github.com/moneywise/moneywise/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	auth := handler.NewAuthHandler(app.AuthService)
	chat := handler.NewChatHandler(app.ChatService)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	// Auth gateway (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /me", middleware.RequireAuth(auth.Me))

	// Chat history
	mux.HandleFunc("GET /chat", chat.History)
	mux.HandleFunc("POST /chat", chat.Append)

	// Global middleware - executed in order (top to bottom).
	// CORS must be first so preflight OPTIONS never hits the method router.
	return middleware.Chain(
		mux,
		middleware.CORS,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
