package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"modecoach-backend/internal/handlers"
	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	coachHandler *handlers.CoachHandler,
	planHandler *handlers.PlanHandler,
	billingHandler *handlers.BillingHandler,
	userHandler *handlers.UserHandler,
	pagesHandler *handlers.PagesHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public pages (app-store data deletion page lives under /?page=...)
	r.Get("/", pagesHandler.Root)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/google", authHandler.GoogleLogin)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Coach Catalog ────
		r.Route("/coaches", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", coachHandler.List)
			r.Post("/", coachHandler.Create)
		})

		// ──── Coaching Sessions ────
		r.Route("/sessions/{coachId}", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Reset)
			r.Post("/messages", sessionHandler.SendMessage)
			r.Put("/tasks/{milestoneId}/{taskId}", sessionHandler.ToggleTask)
			r.Put("/milestones/{milestoneId}", sessionHandler.UpdateMilestone)
			r.Post("/activate", sessionHandler.Activate)
		})

		// ──── Active Plans ────
		r.Route("/plans", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", planHandler.List)
		})

		// ──── Billing ────
		r.Route("/billing", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/status", billingHandler.Status)
			r.Get("/offerings", billingHandler.Offerings)
			// Store transactions run on-device; both endpoints re-sync
			// entitlement and report the resulting plan.
			r.Post("/purchase", billingHandler.Status)
			r.Post("/restore", billingHandler.Status)
		})

		// ──── User ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.Me)
			r.Delete("/me", userHandler.DeleteMe)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
