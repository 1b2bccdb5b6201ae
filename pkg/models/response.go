package models

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthStatusResponse summarizes the cached credential
type AuthStatusResponse struct {
	State       string     `json:"state"`
	Reason      string     `json:"reason,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	TokenExpiry *time.Time `json:"token_expiry,omitempty"`
}

// BulletSuggestionResponse lists suggested bullets for a category
type BulletSuggestionResponse struct {
	Category  string   `json:"category"`
	Bullets   []string `json:"bullets"`
	Provider  string   `json:"provider"`
	RequestID string   `json:"request_id"`
}
