package handlers

import (
	"time"

	"jobdesk/internal/auth"
	"jobdesk/pkg/models"
)

func authStatusResponse(status *auth.Status) models.AuthStatusResponse {
	resp := models.AuthStatusResponse{
		State:       status.State.String(),
		GeneratedAt: timePtr(status.GeneratedAt),
		ValidUntil:  timePtr(status.ValidUntil),
		TokenExpiry: timePtr(status.TokenExpiry),
	}
	if reason := status.Reason(); reason != nil {
		resp.Reason = reason.Error()
	}
	return resp
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
