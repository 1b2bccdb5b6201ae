package bullets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"jobdesk/internal/graph"
)

var (
	ErrEmptyBullet     = errors.New("bullet text is empty")
	ErrInvalidCategory = errors.New("select a valid category")
)

// Bank maps a category to its saved bullets
type Bank map[string][]string

// Add appends bullet to category unless it is already there. added is false
// for duplicates.
func (b Bank) Add(category, bullet string) (added bool, err error) {
	category = strings.TrimSpace(category)
	bullet = strings.TrimSpace(bullet)

	if category == "" {
		return false, ErrInvalidCategory
	}
	if bullet == "" {
		return false, ErrEmptyBullet
	}
	if b.Contains(category, bullet) {
		return false, nil
	}

	b[category] = append(b[category], bullet)
	return true, nil
}

// Contains reports whether bullet is saved under category
func (b Bank) Contains(category, bullet string) bool {
	for _, existing := range b[category] {
		if existing == bullet {
			return true
		}
	}
	return false
}

// Categories returns the non-empty categories, sorted
func (b Bank) Categories() []string {
	out := make([]string, 0, len(b))
	for c, list := range b {
		if len(list) > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// JSONStore reads and writes JSON documents on the drive
type JSONStore interface {
	ReadJSON(ctx context.Context, path string, v interface{}) error
	WriteJSON(ctx context.Context, path string, v interface{}) error
}

// Load reads the bank at path. A missing file is an empty bank.
func Load(ctx context.Context, store JSONStore, path string) (Bank, error) {
	bank := Bank{}
	if err := store.ReadJSON(ctx, path, &bank); err != nil {
		if graph.IsNotFound(err) {
			return Bank{}, nil
		}
		return nil, fmt.Errorf("failed to load bullet bank: %w", err)
	}
	if bank == nil {
		bank = Bank{}
	}
	return bank, nil
}

// Save adds bullet to category in the bank at path and uploads it. Nothing is
// written when the bullet is a duplicate.
func Save(ctx context.Context, store JSONStore, path, category, bullet string, allowed []string) (added bool, err error) {
	if len(allowed) > 0 && !contains(allowed, strings.TrimSpace(category)) {
		return false, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	bank, err := Load(ctx, store, path)
	if err != nil {
		return false, err
	}

	added, err = bank.Add(category, bullet)
	if err != nil || !added {
		return added, err
	}

	if err := store.WriteJSON(ctx, path, bank); err != nil {
		return false, fmt.Errorf("failed to upload bullet bank: %w", err)
	}
	return true, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
