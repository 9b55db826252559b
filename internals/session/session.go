package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/models"
)

// CookieName carries the opaque session id.
const CookieName = "sid"

// Session keys for the stored user projection.
const (
	userIDKey     = "user_id"
	usernameKey   = "username"
	userEmailKey  = "email"
	isVerifiedKey = "is_verified"
	roleKey       = "role"
)

// NewManager creates an scs session manager backed by the shared database,
// so sessions survive process restarts and are visible to every instance.
// The store runs its own periodic cleanup of expired rows.
func NewManager(db *gorm.DB, cookieCfg *config.CookieConfig, lifetime time.Duration) (*scs.SessionManager, error) {
	sm := scs.New()

	store, err := gormstore.New(db)
	if err != nil {
		return nil, err
	}
	sm.Store = store

	sm.Lifetime = lifetime
	sm.IdleTimeout = 0
	sm.Cookie.Name = CookieName
	sm.Cookie.Domain = cookieCfg.Domain
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cookieCfg.Secure
	if cookieCfg.CrossSite {
		sm.Cookie.SameSite = http.SameSiteNoneMode
	} else {
		sm.Cookie.SameSite = http.SameSiteLaxMode
	}

	return sm, nil
}

// Login stores the user projection in the session. The token is renewed
// first to prevent session fixation.
func Login(sm *scs.SessionManager, ctx context.Context, p models.Projection) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, userIDKey, int64(p.ID))
	sm.Put(ctx, usernameKey, p.Username)
	sm.Put(ctx, userEmailKey, p.Email)
	sm.Put(ctx, isVerifiedKey, p.IsVerified)
	sm.Put(ctx, roleKey, p.Role)
	return nil
}

// Logout destroys the server-side session record.
func Logout(sm *scs.SessionManager, ctx context.Context) error {
	return sm.Destroy(ctx)
}

// GetUser retrieves the authenticated user projection, or nil when the
// session holds none.
func GetUser(sm *scs.SessionManager, ctx context.Context) *models.Projection {
	userID := sm.GetInt64(ctx, userIDKey)
	if userID == 0 {
		return nil
	}
	return &models.Projection{
		ID:         uint(userID),
		Username:   sm.GetString(ctx, usernameKey),
		Email:      sm.GetString(ctx, userEmailKey),
		IsVerified: sm.GetBool(ctx, isVerifiedKey),
		Role:       sm.GetString(ctx, roleKey),
	}
}
