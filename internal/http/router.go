package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mowbraylabs/retailpulse/internal/http/budget"
	"github.com/mowbraylabs/retailpulse/internal/http/importcsv"
	"github.com/mowbraylabs/retailpulse/internal/http/locations"
	"github.com/mowbraylabs/retailpulse/internal/http/report"
)

type Options struct {
	// AllowedOrigins feeds the CORS middleware; the dashboard frontend is
	// served from a different origin.
	AllowedOrigins []string
	// AuthSecret enables bearer-token verification when non-empty.
	AuthSecret string
}

func New(
	opts Options,
	budgetsV1 *budget.Handler,
	importV1 *importcsv.Handler,
	reportsV1 *report.Handler,
	locationsV1 *locations.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	if opts.AuthSecret != "" {
		router.Use(BearerAuth(opts.AuthSecret))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/budgets", func(r chi.Router) {
			// The import routes take multipart uploads, so the JSON
			// content-type guard only wraps the CRUD routes.
			r.Route("/import", importV1.Routes)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				budgetsV1.Routes(r)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			reportsV1.Routes(r)
		})

		r.Route("/locations", func(r chi.Router) {
			locationsV1.Routes(r)
		})
	})

	return router
}
