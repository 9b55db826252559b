package middleware

import (
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/models"
	"github.com/shivang-26/techCommunity-website/internals/session"
	"github.com/shivang-26/techCommunity-website/internals/tokens"
)

// UserKey is where RequireAuth places the resolved models.User in the gin
// context.
const UserKey = "user"

// RequireAuthMiddleware authenticates a request if either credential
// mechanism succeeds: the server-side session, or the bearer token from the
// Authorization header or token cookie. Login mints both, so clients can use
// whichever suits them.
type RequireAuthMiddleware struct {
	DB           *gorm.DB
	Sessions     *scs.SessionManager
	TokenManager *tokens.TokenManager
}

func NewRequireAuthMiddleware(db *gorm.DB, sessions *scs.SessionManager, tokenManager *tokens.TokenManager) *RequireAuthMiddleware {
	return &RequireAuthMiddleware{
		DB:           db,
		Sessions:     sessions,
		TokenManager: tokenManager,
	}
}

func (m *RequireAuthMiddleware) RequireAuth(c *gin.Context) {
	userID, ok := m.sessionUserID(c)
	if !ok {
		userID, ok = m.bearerUserID(c)
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	// The id must still resolve against the user table; a credential for a
	// vanished account is as good as no credential.
	var user models.User
	if err := m.DB.First(&user, userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.Set(UserKey, user)
	c.Next()
}

func (m *RequireAuthMiddleware) sessionUserID(c *gin.Context) (uint, bool) {
	p := session.GetUser(m.Sessions, c.Request.Context())
	if p == nil {
		return 0, false
	}
	return p.ID, true
}

func (m *RequireAuthMiddleware) bearerUserID(c *gin.Context) (uint, bool) {
	tokenStr := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenStr = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := c.Cookie(tokens.CookieName); err == nil {
		tokenStr = cookie
	}
	if tokenStr == "" {
		return 0, false
	}

	userID, err := m.TokenManager.Verify(tokenStr)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CurrentUser fetches the user placed in the context by RequireAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
