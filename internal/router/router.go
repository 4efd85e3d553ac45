package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/admin-records/internal/middleware"
	"github.com/jwalitptl/admin-records/pkg/httputil"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type HealthHandler interface {
	RegisterRoutes(gin.IRoutes)
}

type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	health  HealthHandler
	metrics MetricsHandler
	api     []Handler
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	CORSConfig       middleware.CORSConfig
	Compress         bool
	HSTS             bool
	// MetricsPath is empty when metrics are disabled
	MetricsPath string
}

func NewRouter(
	health HealthHandler,
	metrics MetricsHandler,
	config RouterConfig,
	api ...Handler,
) *Router {
	// Set production mode
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:  engine,
		config:  config,
		health:  health,
		metrics: metrics,
		api:     api,
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorLogger(),
	)
	if metrics != nil && config.MetricsPath != "" {
		engine.Use(metrics.Middleware())
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTS = config.HSTS
	engine.Use(
		middleware.SecurityHeaders(security),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	if r.metrics != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metrics.Handler())
	}

	api := r.engine.Group("/api/v1")
	api.Use(middleware.Version(middleware.DefaultVersionConfig()))
	if r.config.Compress {
		api.Use(middleware.Compress(middleware.DefaultCompressConfig()))
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = r.config.MaxBodyBytes
	}
	timeout := middleware.DefaultTimeoutConfig()
	if r.config.RequestTimeout > 0 {
		timeout.Duration = r.config.RequestTimeout
	}
	api.Use(
		middleware.RequireJSON(),
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(timeout),
	)

	for _, h := range r.api {
		h.RegisterRoutes(api)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusNotFound, Message: "route not found"},
		})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
