package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Notification kinds shown as a banner on the next page render
const (
	KindSuccess = "success"
	KindInfo    = "info"
	KindWarning = "warning"
	KindError   = "error"
)

// Notification is the latest outcome message for the user
type Notification struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// State is everything the dashboard remembers between requests
type State struct {
	ID             string        `json:"id"`
	Token          string        `json:"token,omitempty"`
	TokenExpiresAt time.Time     `json:"token_expires_at,omitempty"`
	SelectedJobID  string        `json:"selected_job_id,omitempty"`
	Notification   *Notification `json:"notification,omitempty"`
	Draft          *Draft        `json:"draft,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Draft holds placeholder edits that have not been generated yet, so a page
// reload does not lose them
type Draft struct {
	JobID  string            `json:"job_id"`
	Kind   string            `json:"kind"`
	Values map[string]string `json:"values"`
}

// New returns an empty state with a fresh ID
func New() *State {
	return &State{ID: uuid.NewString(), UpdatedAt: time.Now()}
}

// HasToken reports whether a token is held and not known to be expired
func (s *State) HasToken(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.TokenExpiresAt.IsZero() || now.Before(s.TokenExpiresAt)
}

// SetToken stores a bearer token and its expiry
func (s *State) SetToken(token string, expiresAt time.Time) {
	s.Token = token
	s.TokenExpiresAt = expiresAt
}

// ClearToken forgets the token, forcing re-authentication
func (s *State) ClearToken() {
	s.Token = ""
	s.TokenExpiresAt = time.Time{}
}

// Notify replaces the pending notification
func (s *State) Notify(kind, message string) {
	s.Notification = &Notification{Kind: kind, Message: message}
}

// TakeNotification returns the pending notification and clears it
func (s *State) TakeNotification() *Notification {
	n := s.Notification
	s.Notification = nil
	return n
}

// KeepDraft remembers unsaved placeholder values of one job and document kind
func (s *State) KeepDraft(jobID, kind string, values map[string]string) {
	if len(values) == 0 {
		s.Draft = nil
		return
	}
	s.Draft = &Draft{JobID: jobID, Kind: kind, Values: values}
}

// TakeDraft returns the kept values when they belong to jobID and kind, and
// clears the draft either way
func (s *State) TakeDraft(jobID, kind string) map[string]string {
	d := s.Draft
	s.Draft = nil
	if d == nil || d.JobID != jobID || d.Kind != kind {
		return nil
	}
	return d.Values
}

// clone returns a deep copy so stored states are not shared with handlers
func (s *State) clone() *State {
	out := *s
	if s.Notification != nil {
		n := *s.Notification
		out.Notification = &n
	}
	if s.Draft != nil {
		d := *s.Draft
		d.Values = make(map[string]string, len(s.Draft.Values))
		for k, v := range s.Draft.Values {
			d.Values[k] = v
		}
		out.Draft = &d
	}
	return &out
}

// Store persists session states
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
	IsHealthy(ctx context.Context) error
	Close() error
}
