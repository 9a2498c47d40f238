package supabase

import (
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	goSession "github.com/MrEthical07/goSession"
)

func identityFromUser(u types.User) goSession.Identity {
	ident := goSession.Identity{
		Email: u.Email,
	}
	if u.ID != uuid.Nil {
		ident.ID = u.ID.String()
	}
	if u.EmailConfirmedAt != nil || !u.ConfirmedAt.IsZero() {
		ident.EmailVerified = true
	}
	if len(u.UserMetadata) > 0 {
		meta := make(map[string]any, len(u.UserMetadata))
		for k, v := range u.UserMetadata {
			meta[k] = v
		}
		ident.Metadata = meta
	}
	return ident
}

// pairFromSession converts GoTrue's relative expires_in to a wall-clock
// deadline. A session without expires_in yields a pair with unknown expiry.
func pairFromSession(s types.Session, now time.Time) goSession.TokenPair {
	pair := goSession.TokenPair{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	if s.ExpiresIn > 0 {
		pair.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return pair
}

func grantFromSession(s types.Session) goSession.Grant {
	pair := pairFromSession(s, time.Now())
	return goSession.Grant{
		Identity: identityFromUser(s.User),
		Tokens:   &pair,
	}
}
