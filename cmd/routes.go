package cmd

import (
	"log"
	"net/http"

	"github.com/foaademad/event-test/internal/handlers"
	"github.com/foaademad/event-test/monitoring"
	"github.com/foaademad/event-test/security"
	"github.com/foaademad/event-test/utils"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *server) registerRoutes(app *pocketbase.PocketBase) {
	homeHandler := handlers.NewHomeHandler(s.events, s.auth, s.seed.FeaturedCategories)
	eventsHandler := handlers.NewEventsHandler(s.events, s.cfg.Location())
	authHandler := handlers.NewAuthHandler(s.auth)
	adminHandler := handlers.NewAdminHandler(s.events, s.cfg.AdminPage)
	pagesHandler := handlers.NewPagesHandler(s.pages)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(monitoring.RequestMetrics)

		v1 := se.Router.Group("/api/v1")
		v1.BindFunc(s.guard.LoadSession)

		v1.GET("/home", homeHandler.Home)

		// Event endpoints
		v1.GET("/events", eventsHandler.ListEvents)
		v1.GET("/events/{id}", eventsHandler.GetEvent)
		v1.GET("/events/{id}/calendar.ics", eventsHandler.ExportCalendar)
		v1.POST("/events/{id}/register", eventsHandler.Register).BindFunc(s.guard.RequireUser)

		// Auth endpoints
		auth := v1.Group("/auth")
		auth.POST("/login", authHandler.Login).BindFunc(security.BlockSuspiciousAgents, s.limiter.Limit)
		auth.POST("/signup", authHandler.Signup).BindFunc(security.BlockSuspiciousAgents, s.limiter.Limit)
		auth.POST("/logout", authHandler.Logout).BindFunc(s.guard.RequireUser)
		auth.GET("/me", authHandler.Me)

		// Admin endpoints
		admin := v1.Group("/admin")
		admin.BindFunc(s.guard.RequireAdmin)
		admin.GET("/events", adminHandler.ListEvents)
		admin.POST("/events", adminHandler.CreateEvent)
		admin.PATCH("/events/{id}", adminHandler.UpdateEvent)
		admin.DELETE("/events/{id}", adminHandler.DeleteEvent)

		// Content pages
		v1.GET("/pages/{slug}", pagesHandler.GetPage)
		v1.POST("/contact", pagesHandler.Contact).BindFunc(security.BlockSuspiciousAgents, s.limiter.Limit)

		se.Router.GET("/health", s.health)

		if s.cfg.EnableMetrics {
			se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		log.Println("Server routes registered")

		return se.Next()
	})
}

func (s *server) health(e *core.RequestEvent) error {
	body := map[string]any{
		"status":   "healthy",
		"sessions": s.cfg.SessionBackend,
		"events":   len(s.events.Events()),
	}

	if s.redis != nil {
		if err := utils.RedisHealthCheck(e.Request.Context(), s.redis); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return e.JSON(http.StatusServiceUnavailable, body)
		}
	}

	return e.JSON(http.StatusOK, body)
}
