package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seedledger/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	dbPing    func() error
	dbStats   func() (PoolStats, error)
}

// NewSystemHandler creates a new SystemHandler. dbPing and dbStats may
// be nil when no database probe is wired.
func NewSystemHandler(dbPing func() error, dbStats func() (PoolStats, error)) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		dbPing:    dbPing,
		dbStats:   dbStats,
	}
}

// PoolStats is the connection pool snapshot reported on the system
// info endpoint
type PoolStats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	GoVersion string     `json:"go_version"`
	Uptime    string     `json:"uptime"`
	DBPool    *PoolStats `json:"db_pool,omitempty"`
}

// GetSystemInfo returns basic system information
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Seed Ledger API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.dbStats != nil {
		if stats, err := h.dbStats(); err == nil {
			info.DBPool = &stats
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Health reports liveness and, when wired, database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeUnavailable, "Database is unreachable"))
			return
		}
		resp.Database = "ok"
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Ready reports whether the service can accept traffic. It fails when
// the database probe is wired and unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeUnavailable, "Service is not ready"))
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{Status: "ready"}))
}
