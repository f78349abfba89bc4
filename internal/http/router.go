package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/openmeet/openmeet/internal/http/handlers"
	"github.com/openmeet/openmeet/internal/http/middlewares"
	"github.com/openmeet/openmeet/internal/observability"
	"github.com/openmeet/openmeet/internal/repo/postgres"
	"github.com/openmeet/openmeet/internal/statsclient"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type Deps struct {
	Env            string
	ServiceName    string
	AllowedOrigins []string
	Log            *slog.Logger
	Pool           *pgxpool.Pool
	Prom           *observability.Prom
	Views          *statsclient.Views

	// Extra readiness checks beyond the database ping (redis, stats).
	ReadyChecks map[string]func() error
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(otelgin.Middleware(deps.ServiceName))

	if len(deps.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(deps.AllowedOrigins))
	}

	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	checks := map[string]func() error{
		"db": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return deps.Pool.Ping(ctx)
		},
	}

	for name, check := range deps.ReadyChecks {
		checks[name] = check
	}

	health := handlers.NewHealthHandler(checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	eventsRepo := postgres.NewEventsRepo(deps.Pool, deps.Prom)
	locationsRepo := postgres.NewLocationsRepo(deps.Pool, deps.Prom)
	requestsRepo := postgres.NewRequestsRepo(deps.Pool, deps.Prom)
	categoriesRepo := postgres.NewCategoriesRepo(deps.Pool, deps.Prom)
	usersRepo := postgres.NewUsersRepo(deps.Pool, deps.Prom)

	publicEvents := handlers.NewPublicEventsHandler(eventsRepo, deps.Views)
	privateEvents := handlers.NewPrivateEventsHandler(eventsRepo, categoriesRepo, locationsRepo, usersRepo, requestsRepo)
	adminEvents := handlers.NewAdminEventsHandler(eventsRepo, categoriesRepo, locationsRepo)
	publicLocations := handlers.NewPublicLocationsHandler(locationsRepo)
	userLocations := handlers.NewUserLocationsHandler(locationsRepo, usersRepo)
	adminLocations := handlers.NewAdminLocationsHandler(locationsRepo)
	requests := handlers.NewRequestsHandler(requestsRepo)
	categories := handlers.NewCategoriesHandler(categoriesRepo)
	users := handlers.NewUsersHandler(usersRepo)

	limiter := middlewares.NewRateLimiter(60, time.Minute)

	public := r.Group("/", limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		public.GET("/events", publicEvents.List)
		public.GET("/events/:eventId", publicEvents.Get)
		public.GET("/categories", categories.List)
		public.GET("/categories/:catId", categories.Get)
		public.GET("/locations", publicLocations.List)
	}

	private := r.Group("/users/:userId", limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		private.POST("/events", privateEvents.Create)
		private.GET("/events", privateEvents.List)
		private.GET("/events/:eventId", privateEvents.Get)
		private.PATCH("/events/:eventId", privateEvents.Patch)
		private.GET("/events/:eventId/requests", privateEvents.ListRequests)

		private.POST("/requests", requests.Create)
		private.GET("/requests", requests.List)
		private.PATCH("/requests/:requestId/cancel", requests.Cancel)

		private.POST("/locations", userLocations.Create)
		private.GET("/locations", userLocations.List)
		private.GET("/locations/:locationId", userLocations.Get)
		private.PATCH("/locations/:locationId", userLocations.Patch)
		private.DELETE("/locations/:locationId", userLocations.Delete)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/events", adminEvents.List)
		admin.PATCH("/events/:eventId", adminEvents.Patch)

		admin.POST("/locations", adminLocations.Create)
		admin.GET("/locations", adminLocations.List)
		admin.PATCH("/locations/:locationId", adminLocations.Patch)
		admin.DELETE("/locations/:locationId", adminLocations.Delete)
		admin.GET("/locations/distance/:id1/:id2", adminLocations.Distance)

		admin.POST("/users", users.Create)
		admin.GET("/users", users.List)
		admin.DELETE("/users/:userId", users.Delete)

		admin.POST("/categories", categories.Create)
		admin.PATCH("/categories/:catId", categories.Update)
		admin.DELETE("/categories/:catId", categories.Delete)
	}

	return r
}
