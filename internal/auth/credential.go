package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Record is the on-disk credential: the serialised identity cache plus the
// moment it was produced by an interactive sign-in.
type Record struct {
	EncodedCache string `json:"encoded_token_cache"`
	GeneratedAt  string `json:"generated_at,omitempty"`
}

// GeneratedTime parses GeneratedAt. ok is false when the field is missing or
// not a recognisable timestamp.
func (r *Record) GeneratedTime() (t time.Time, ok bool) {
	if r == nil || strings.TrimSpace(r.GeneratedAt) == "" {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(r.GeneratedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 with either "Z" or a numeric offset, and
// naive ISO-8601 which is read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// Store reads and writes the credential file
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file location
func (s *Store) Path() string {
	return s.path
}

// Read loads the record. A missing file yields ErrNoCredential.
func (s *Store) Read() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: credential file is not valid JSON: %v", ErrNoCredential, err)
	}
	if rec.EncodedCache == "" {
		return nil, fmt.Errorf("%w: credential file has no cache", ErrNoCredential)
	}
	return &rec, nil
}

// Write replaces the whole record. The file is written to a temp sibling and
// renamed so readers never observe a partial record.
func (s *Store) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp credential file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}
