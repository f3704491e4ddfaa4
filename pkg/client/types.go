package client

// HealthStatus mirrors the server's /health response.
type HealthStatus struct {
	Status      string `json:"status"`
	NodeID      int64  `json:"node_id"`
	UUID        string `json:"uuid"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Connections int    `json:"connections"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
