package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const dependencyCheckTimeout = 3 * time.Second

// dependencyStatus is one entry of the readiness report.
type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	startAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		rdb:     rdb,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live — liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready — readiness probe with dependency checks.
// The database is required; redis is optional, so a missing client reports
// disabled without degrading readiness.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dependencyCheckTimeout)
	defer cancel()

	db := h.checkDB(ctx)
	cache := h.checkRedis(ctx)

	status := "healthy"
	httpStatus := fiber.StatusOK
	if db.Status != "up" {
		status = "degraded"
		httpStatus = fiber.StatusServiceUnavailable
	} else if cache.Status == "down" {
		// Votes still apply without redis; cooldown and cache degrade.
		status = "degraded"
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": db,
			"redis":    cache,
		},
		"uptimeSeconds": int(time.Since(h.startAt).Seconds()),
	})
}

func (h *HealthHandler) checkDB(ctx context.Context) dependencyStatus {
	start := time.Now()
	err := h.pool.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return dependencyStatus{Status: "down", LatencyMs: latency, Error: "connection failed"}
	}
	return dependencyStatus{Status: "up", LatencyMs: latency}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.rdb == nil {
		return dependencyStatus{Status: "disabled"}
	}

	start := time.Now()
	err := h.rdb.Ping(ctx).Err()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return dependencyStatus{Status: "down", LatencyMs: latency, Error: "connection failed"}
	}
	return dependencyStatus{Status: "up", LatencyMs: latency}
}
