package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any dependency that can report liveness: *sql.DB (PingContext),
// *pgxpool.Pool and the Redis client are wrapped with PingFunc.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	checks      map[string]Pinger
}

func NewHealthHandler(serviceName, version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checks:      checks,
	}
}

// HealthCheck pings every dependency. Any failure answers 503 with status
// "degraded" so load balancers stop routing here.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	components := make(map[string]string, len(h.checks))
	status := "healthy"
	code := http.StatusOK

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		err := h.checks[name].Ping(pingCtx)
		cancel()

		if err != nil {
			components[name] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Service:    h.serviceName,
		Version:    h.version,
		Components: components,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
