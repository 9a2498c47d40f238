package session

import (
	"testing"
	"time"
)

// FuzzSnapshotDecode exercises the snapshot decoder with arbitrary inputs.
// Goal: no panics, no unexpected nil dereferences, graceful error handling.
func FuzzSnapshotDecode(f *testing.F) {
	// Seed with a valid v1 encoded snapshot.
	exp := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	encoded, err := EncodeSnapshot(Snapshot{
		Identity: &Identity{
			ID:            "user-fuzz",
			Email:         "fuzz@example.com",
			EmailVerified: true,
			Metadata:      map[string]any{"k": "v"},
		},
		Tokens: &TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresAt: exp},
		Status: StatusAuthenticated,
	})
	if err == nil {
		f.Add(encoded)
	}

	// Empty and short inputs.
	f.Add([]byte{})
	f.Add([]byte("{"))
	f.Add([]byte("{}"))
	f.Add([]byte(`{"v":1}`))
	f.Add([]byte(`{"v":255}`))

	// Truncated at various offsets.
	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}
	if len(encoded) > 30 {
		f.Add(encoded[:30])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic. Errors are expected for malformed input.
		s, err := DecodeSnapshot(data)
		if err != nil {
			return
		}

		// If decode succeeded, re-encoding the result must not panic either.
		if _, err := EncodeSnapshot(*s); err != nil {
			t.Fatalf("decoded snapshot failed to re-encode: %v", err)
		}
	})
}
