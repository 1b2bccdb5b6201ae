package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WriteThenReadRoundTrips(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "cred.json"))

	in := Record{EncodedCache: "ZW5jb2RlZA==", GeneratedAt: "2026-03-01T10:00:00Z"}
	require.NoError(t, store.Write(in))

	out, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	gen, ok := out.GeneratedTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), gen)
}

func TestStore_WriteOverwritesWholesaleAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "cred.json"))

	require.NoError(t, store.Write(Record{EncodedCache: "first", GeneratedAt: "2026-01-01T00:00:00Z"}))
	require.NoError(t, store.Write(Record{EncodedCache: "second"}))

	out, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", out.EncodedCache)
	assert.Empty(t, out.GeneratedAt)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cred.json", entries[0].Name())
}

func TestStore_ReadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cred.json"))

	_, err := store.Read()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestStore_ReadUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cred.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Read()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
	}{
		{"zulu", "2026-05-04T12:30:00Z"},
		{"numeric offset", "2026-05-04T12:30:00+00:00"},
		{"other offset", "2026-05-04T14:30:00+02:00"},
		{"naive", "2026-05-04T12:30:00"},
		{"naive with micros", "2026-05-04T12:30:00.000000"},
		{"space separated", "2026-05-04 12:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
