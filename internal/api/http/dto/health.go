package dto

type HealthResponse struct {
	Status        string `json:"status"`
	Module        string `json:"module"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
