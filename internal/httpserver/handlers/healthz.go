package handlers

import (
	"net/http"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	Articles      int64   `json:"articles"`
	Events        int64   `json:"events"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		resp := healthzResponse{
			Status:        "ok",
			Database:      "up",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: time.Since(start).Seconds(),
		}

		status := http.StatusOK
		if err := d.Store.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		} else {
			resp.Articles, _ = d.Store.ArticleCount(true)
			resp.Events, _ = d.Store.EventCount(true)
		}

		writeJSON(w, status, resp)
	}
}
