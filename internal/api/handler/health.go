package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const readinessTimeout = 3 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	mongo Pinger
}

func NewHealthHandler(mongo Pinger) *HealthHandler {
	return &HealthHandler{mongo: mongo}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness returns 200 as long as the process serves HTTP.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings MongoDB before declaring the service ready.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := readinessResponse{
		Status:       "ok",
		Dependencies: map[string]dependencyStatus{"mongodb": {Status: "ok"}},
	}
	code := http.StatusOK

	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		resp.Status = "degraded"
		resp.Dependencies["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, resp)
}
