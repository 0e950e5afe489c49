package api

import "github.com/labbridge/labbridge/internal/registry"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State          string  `json:"state"` // "ok" | "stale" | "no-data"
	UptimeSec      float64 `json:"uptime_sec"`
	Recipients     int     `json:"recipients"`
	WSClients      int     `json:"ws_clients"`
	LabCount       int     `json:"lab_count"`
	SnapshotAgeSec float64 `json:"snapshot_age_sec,omitempty"`
}

// LabsResponse is the payload for GET /api/v1/labs.
type LabsResponse struct {
	Labs      []registry.Lab `json:"labs"`
	UpdatedAt string         `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}
