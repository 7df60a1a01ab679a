package http

import (
	"net/http"
	"time"

	"github.com/vaultsuite/onboard/internal/onboard/store"
	"github.com/vaultsuite/onboard/pkg/httpx"
	"github.com/vaultsuite/onboard/pkg/onboardsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database and the message queue
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	onboardsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	onboardsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	queuePinger QueuePinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &onboardsdk.HealthChecks{
			Database: "ok",
			Queue:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check broker connectivity
		if queuePinger != nil {
			if err := queuePinger.Ping(r.Context()); err != nil {
				checks.Queue = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		response := onboardsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
