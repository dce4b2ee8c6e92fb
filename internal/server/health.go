package server

import (
	"encoding/json"
	"net/http"

	"github.com/teemow/calmcp/internal/logging"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// HealthHandler reports liveness. The database probe is advisory: a
// failing store degrades the response but the service stays "ok"
// because reads work without it.
func HealthHandler(sc *ServerContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}

		if err := sc.PingDatabase(r.Context()); err != nil {
			sc.Logger().Warn("health check database probe failed",
				logging.Operation("health"),
				logging.Err(err))
			resp.Database = "unavailable"
		} else {
			resp.Database = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			sc.Logger().Error("failed to write health response", logging.Err(err))
		}
	}
}
