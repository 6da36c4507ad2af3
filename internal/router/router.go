package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hellodube-gateway/internal/config"
	"hellodube-gateway/internal/handler"
	"hellodube-gateway/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Program *handler.ProgramHandler
	Docs    *handler.DocsHandler
	Test    *handler.TestHandler
	Health  *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Status)
	r.Get("/login.html", handler.LoginPage)

	// Documentation routes gate themselves: the token may arrive by query
	// parameter and the permitted roles differ per variant.
	r.Route("/api-docs", func(docs chi.Router) {
		docs.Get("/{domain}/{level}", h.Docs.SwaggerUI)
		docs.Get("/{domain}/{level}/openapi.yaml", h.Docs.OpenAPI)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authMiddleware.Authenticate)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/logout", h.Auth.Logout)
			auth.Post("/logoutAll", h.Auth.LogoutAll)
		})

		api.Get("/test/public", h.Test.Public)
		api.Get("/test/auth", h.Test.Authenticated)

		api.Route("/dube", func(dube chi.Router) {
			for _, rt := range dubeRoutes(h.Program) {
				dube.With(authMiddleware.RequireRoles(rt.roles...)).Method(rt.method, rt.pattern, rt.handler)
			}
		})

		api.Route("/wfp", func(wfp chi.Router) {
			for _, rt := range wfpRoutes(h.Program) {
				wfp.With(authMiddleware.RequireRoles(rt.roles...)).Method(rt.method, rt.pattern, rt.handler)
			}
		})
	})

	return r
}
