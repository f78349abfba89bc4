package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpx "github.com/openmeet/openmeet/internal/http"
	"github.com/openmeet/openmeet/internal/http/handlers"
	"github.com/openmeet/openmeet/internal/observability"
)

func NewRouter(env, serviceName string, log *slog.Logger, pool *pgxpool.Pool, prom *observability.Prom) *gin.Engine {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(httpx.RequestID())
	r.Use(httpx.RequestLogger(log))
	r.Use(otelgin.Middleware(serviceName))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	health := handlers.NewHealthHandler(map[string]func() error{
		"db": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return pool.Ping(ctx)
		},
	})
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	h := NewHandler(NewRepo(pool, prom))
	r.POST("/hit", h.Hit)
	r.GET("/stats", h.Stats)

	return r
}
