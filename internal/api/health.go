package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// dependency is one backing service the readiness probe pings. A critical
// dependency being down fails readiness outright; a non-critical one only
// degrades it.
type dependency struct {
	name     string
	critical bool
	check    func(context.Context) error
}

type HealthHandler struct {
	env     string
	version string
	deps    []dependency
}

func NewHealthHandler(pgPool *pgxpool.Pool, rdb *redis.Client, env, version string) *HealthHandler {
	return newHealthHandler(env, version, []dependency{
		{name: "postgres", critical: true, check: func(ctx context.Context) error {
			return pgPool.Ping(ctx)
		}},
		{name: "redis", check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
	})
}

func newHealthHandler(env, version string, deps []dependency) *HealthHandler {
	return &HealthHandler{env: env, version: version, deps: deps}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.deps))
	status := "ok"
	for _, d := range h.deps {
		depCtx, depCancel := context.WithTimeout(ctx, time.Second)
		err := d.check(depCtx)
		depCancel()

		if err == nil {
			deps[d.name] = "ok"
			continue
		}
		deps[d.name] = "down"
		switch {
		case d.critical || status == "degraded":
			status = "error"
		case status == "ok":
			status = "degraded"
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
