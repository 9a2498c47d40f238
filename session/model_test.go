package session

import (
	"testing"
	"time"
)

func TestTokenPairValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		pair   TokenPair
		leeway time.Duration
		want   bool
	}{
		{
			name: "empty access token",
			pair: TokenPair{ExpiresAt: now.Add(time.Hour)},
			want: false,
		},
		{
			name: "unknown expiry assumed valid",
			pair: TokenPair{AccessToken: "at"},
			want: true,
		},
		{
			name: "well before expiry",
			pair: TokenPair{AccessToken: "at", ExpiresAt: now.Add(time.Hour)},
			want: true,
		},
		{
			name: "already expired",
			pair: TokenPair{AccessToken: "at", ExpiresAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name:   "inside leeway window",
			pair:   TokenPair{AccessToken: "at", ExpiresAt: now.Add(20 * time.Second)},
			leeway: 30 * time.Second,
			want:   false,
		},
		{
			name:   "outside leeway window",
			pair:   TokenPair{AccessToken: "at", ExpiresAt: now.Add(45 * time.Second)},
			leeway: 30 * time.Second,
			want:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pair.Valid(now, tc.leeway); got != tc.want {
				t.Fatalf("Valid(%v, %v) = %v, want %v", tc.pair.ExpiresAt, tc.leeway, got, tc.want)
			}
		})
	}
}

func TestGrantCloneIsolation(t *testing.T) {
	g := Grant{
		Identity: Identity{ID: "u1", Metadata: map[string]any{"k": "v"}},
		Tokens:   &TokenPair{AccessToken: "at"},
	}
	c := g.Clone()
	c.Identity.Metadata["k"] = "changed"
	c.Tokens.AccessToken = "changed"

	if g.Identity.Metadata["k"] != "v" {
		t.Fatalf("clone shares metadata map")
	}
	if g.Tokens.AccessToken != "at" {
		t.Fatalf("clone shares token pair")
	}
}

func TestStatusString(t *testing.T) {
	if StatusInitializing.String() != "initializing" ||
		StatusAnonymous.String() != "anonymous" ||
		StatusAuthenticated.String() != "authenticated" {
		t.Fatalf("unexpected status strings: %v %v %v",
			StatusInitializing, StatusAnonymous, StatusAuthenticated)
	}
	if Status(99).String() != "unknown" {
		t.Fatalf("expected unknown for out-of-range status")
	}
}
