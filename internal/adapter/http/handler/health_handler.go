package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	pool        *pgxpool.Pool
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:        pool,
		redisClient: redisClient,
	}
}

// Liveness returns 200 if the process is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 once both backing stores answer pings. A failing
// component is named so the probe output is enough to triage.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	components := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if h.pool == nil || h.pool.Ping(ctx) != nil {
		components["postgres"] = "unreachable"
		healthy = false
	}
	if h.redisClient == nil || h.redisClient.Ping(ctx).Err() != nil {
		components["redis"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	components["status"] = "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		components["status"] = "not ready"
	}

	writeJSON(w, status, components)
}
