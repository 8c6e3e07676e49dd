package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/handler/appointment"
	"github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/billing"
	"github.com/jwalitptl/hms-api/internal/handler/delivery"
	"github.com/jwalitptl/hms-api/internal/handler/hospital"
	"github.com/jwalitptl/hms-api/internal/handler/pharmacy"
	"github.com/jwalitptl/hms-api/internal/handler/prescription"
	"github.com/jwalitptl/hms-api/internal/handler/user"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         *auth.Handler
	userH         *user.Handler
	hospitalH     *hospital.Handler
	appointmentH  *appointment.Handler
	prescriptionH *prescription.Handler
	pharmacyH     *pharmacy.Handler
	billingH      *billing.Handler
	deliveryH     *delivery.Handler
	h             *handler.Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	CORS           middleware.CORSConfig
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	authH *auth.Handler,
	userH *user.Handler,
	hospitalH *hospital.Handler,
	appointmentH *appointment.Handler,
	prescriptionH *prescription.Handler,
	pharmacyH *pharmacy.Handler,
	billingH *billing.Handler,
	deliveryH *delivery.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()
	engine := gin.New()

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:        engine,
		auth:          authMW,
		authH:         authH,
		userH:         userH,
		hospitalH:     hospitalH,
		appointmentH:  appointmentH,
		prescriptionH: prescriptionH,
		pharmacyH:     pharmacyH,
		billingH:      billingH,
		deliveryH:     deliveryH,
		h:             h,
		metrics:       newRouterMetrics(),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.CORS(config.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}

	// Public routes
	r.authH.RegisterRoutes(api)

	// Everything else needs a valid token.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.hospitalH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.billingH.RegisterRoutes(protected)
	r.deliveryH.RegisterRoutes(protected)

	admin := protected.Group("")
	admin.Use(r.auth.RequireRoles(
		model.RoleHospitalAdmin,
		model.RoleSuperAdmin,
		model.RoleReceptionist,
		model.RoleDoctor,
	))
	r.userH.RegisterRoutes(admin)

	clinical := protected.Group("")
	clinical.Use(r.auth.RequireRoles(
		model.RoleDoctor,
		model.RolePharmacy,
		model.RoleNurse,
		model.RoleHospitalAdmin,
	))
	r.prescriptionH.RegisterRoutes(clinical)
	r.pharmacyH.RegisterRoutes(clinical)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
