package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/purchasing/internal/infrastructure/logger"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"github.com/erp/purchasing/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	prefix     string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithPrefix mounts every resource under prefix (e.g. "/api").
// Resources are served at the root by default, like json-server.
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	group := r.engine.Group("/" + strings.Trim(r.prefix, "/"))
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(group)
	}
}

// EngineConfig holds what the middleware chain needs
type EngineConfig struct {
	Logger  *zap.Logger
	Metrics *telemetry.Metrics // nil disables /metrics and request metrics
	Prefix  string
	// TraceService names the server spans; empty disables request tracing
	TraceService string
}

// NewEngine builds the gin engine with request id, tracing, logging,
// recovery, CORS and metrics middleware, then registers every resource
func NewEngine(cfg EngineConfig, registrars ...RouteRegistrar) *gin.Engine {
	zapLogger := logger.OrNop(cfg.Logger)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	if cfg.TraceService != "" {
		engine.Use(middleware.Tracing(cfg.TraceService), middleware.SpanAnnotator())
	}
	engine.Use(
		logger.AccessLog(zapLogger),
		logger.Recover(zapLogger),
		middleware.CORS(),
	)
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r := NewRouter(engine, WithPrefix(cfg.Prefix))
	for _, registrar := range registrars {
		r.Register(registrar)
	}
	r.Setup()
	return engine
}
