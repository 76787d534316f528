package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/jedilnik/internal/model"
)

// ErrSessionRevoked is returned when a session's token has been invalidated.
var ErrSessionRevoked = errors.New("session revoked")

// Revoker records that a token ID may no longer be used.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// Session is the authenticated caller of a request: the validated claims
// plus the raw bearer token they came from.
type Session struct {
	Claims *Claims
	Token  string
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// IsMaster reports whether the session belongs to a master admin.
func (s *Session) IsMaster() bool {
	return s != nil && s.Claims.Role == model.RoleMaster
}

// CanAccess reports whether the session may read or modify the given
// restaurant. Masters see every restaurant; admins only their assigned one.
func (s *Session) CanAccess(restaurantID int64) bool {
	if s == nil || s.Claims == nil {
		return false
	}
	if s.Claims.Role == model.RoleMaster {
		return true
	}
	return s.Claims.RestaurantID != nil && *s.Claims.RestaurantID == restaurantID
}

// Invalidate revokes the session's token so later requests carrying it are
// rejected with ErrSessionRevoked.
func (s *Session) Invalidate(ctx context.Context, r Revoker) error {
	if s == nil || s.Claims == nil {
		return fmt.Errorf("invalidating session: no session")
	}

	expiresAt := time.Now().Add(TokenExpiry)
	if s.Claims.ExpiresAt != nil {
		expiresAt = s.Claims.ExpiresAt.Time
	}
	if err := r.Revoke(ctx, s.Claims.ID, expiresAt); err != nil {
		return fmt.Errorf("invalidating session: %w", err)
	}
	return nil
}
