package petstoreserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var errMissingTransaction = errors.New("tran_id is required")

// ReadinessCheck probes one dependency.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsAPI serves liveness, readiness, and metrics.
type OpsAPI struct {
	checks  []ReadinessCheck
	metrics http.Handler
}

func NewOpsAPI(metrics http.Handler, checks ...ReadinessCheck) OpsAPI {
	return OpsAPI{checks: checks, metrics: metrics}
}

// Get /healthz
func (api *OpsAPI) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Get /readyz
func (api *OpsAPI) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(api.checks))
	for _, check := range api.checks {
		if err := check.Check(ctx); err != nil {
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
}

// Get /metrics
func (api *OpsAPI) Metrics(c *gin.Context) {
	if api.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	api.metrics.ServeHTTP(c.Writer, c.Request)
}
