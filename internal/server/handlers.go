package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	servermw "github.com/newsloom/newsloom/internal/server/middleware"
	"github.com/newsloom/newsloom/internal/store"
)

// Version info is injected from main via SetVersionInfo.
var (
	appVersion   = "dev"
	appCommit    = "unknown"
	appBuildDate = "unknown"
)

// SetVersionInfo sets the version information reported by /version.
func SetVersionInfo(version, commit, buildDate string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "healthy"

	if s.store != nil && s.store.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.store.DB.PingContext(ctx); err != nil {
			checks["store"] = "unhealthy"
			status = "unhealthy"
		} else {
			checks["store"] = "healthy"
		}
	}

	if status == "unhealthy" {
		servermw.WriteError(w, r, http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE", "health check failed")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   appVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// VersionResponse represents the version information response.
type VersionResponse struct {
	App     AppInfo     `json:"app"`
	Runtime RuntimeInfo `json:"runtime"`
}

type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		App: AppInfo{
			Name:      "newsloom",
			Version:   appVersion,
			Commit:    appCommit,
			BuildDate: appBuildDate,
			GoVersion: runtime.Version(),
		},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	})
}

// RateLimitEntry is the wire form of stored rate limit state.
type RateLimitEntry struct {
	Client       string     `json:"client"`
	RequestCount int        `json:"request_count"`
	WindowStart  time.Time  `json:"window_start"`
	BackoffUntil *time.Time `json:"backoff_until,omitempty"`
	LastQuotaAt  *time.Time `json:"last_quota_at,omitempty"`
}

func (s *Server) rateLimitsHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		servermw.WriteError(w, r, http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE", "store is not configured")
		return
	}

	query := store.RateLimitQuery{
		Client: strings.TrimSpace(r.URL.Query().Get("client")),
		Prefix: strings.TrimSpace(r.URL.Query().Get("prefix")),
	}
	if query.Client == "" && query.Prefix == "" {
		query.All = true
	}

	entries, err := s.store.ListRateLimits(r.Context(), query)
	if err != nil {
		servermw.WriteError(w, r, http.StatusInternalServerError,
			"INTERNAL_ERROR", err.Error())
		return
	}

	payload := make([]RateLimitEntry, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, RateLimitEntry{
			Client:       entry.Client,
			RequestCount: entry.State.RequestCount,
			WindowStart:  entry.State.WindowStart,
			BackoffUntil: entry.State.BackoffUntil,
			LastQuotaAt:  entry.State.LastQuotaAt,
		})
	}

	writeJSON(w, http.StatusOK, payload)
}

// ReportSummary is the wire form of a stored report.
type ReportSummary struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		servermw.WriteError(w, r, http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE", "store is not configured")
		return
	}

	reports, err := s.store.ListReports(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		servermw.WriteError(w, r, http.StatusInternalServerError,
			"INTERNAL_ERROR", err.Error())
		return
	}

	payload := make([]ReportSummary, 0, len(reports))
	for _, report := range reports {
		payload = append(payload, ReportSummary{
			ID:        report.ID,
			Topic:     report.Topic,
			Content:   report.Content,
			CreatedAt: report.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
