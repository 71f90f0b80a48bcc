package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"tripndrop/internal/config"
	"tripndrop/internal/domain"
	"tripndrop/internal/http/handlers"
	appmw "tripndrop/internal/http/middleware"
	"tripndrop/internal/http/middleware/ratelimit"
	"tripndrop/internal/logx"
)

const requestTimeout = 5 * time.Second

// Params are the router dependencies resolved by the container.
type Params struct {
	dig.In

	Config    *config.Config
	Logger    logx.Logger
	Base      *handlers.Handlers
	Delivery  *handlers.DeliveryHandler
	Match     *handlers.MatchHandler
	RateLimit *ratelimit.Middleware
	Metrics   appmw.HTTPMetrics
	Gatherer  prometheus.Gatherer `optional:"true"`
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Observability(p.Logger, p.Metrics))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", p.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(p.Base.HealthcheckHead))
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(http.HandlerFunc(p.Base.NotFound))

	r.Route("/api", func(r chi.Router) {
		r.Use(appmw.Auth([]byte(p.Config.Auth.JWTSecret), p.Logger))
		if p.RateLimit != nil {
			r.Use(p.RateLimit.Handler())
		}

		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireRole(domain.RoleSender))
			r.Post("/deliveries", p.Delivery.Create)
			r.Get("/deliveries/mine", p.Delivery.Mine)
		})

		// sender or assigned traveler, checked by the service
		r.Get("/deliveries/{id}", p.Delivery.Get)

		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireRole(domain.RoleTraveler))
			r.Post("/matches", p.Match.Find)
			r.Put("/deliveries/{id}/accept", p.Delivery.Accept)
			r.Put("/deliveries/{id}/start", p.Delivery.Start)
			r.Put("/deliveries/{id}/complete", p.Delivery.Complete)
			r.Get("/jobs/mine", p.Delivery.Jobs)
			r.Get("/journeys/mine", p.Match.Journeys)
		})
	})

	return r
}
