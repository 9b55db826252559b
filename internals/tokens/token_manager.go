package tokens

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shivang-26/techCommunity-website/internals/config"
)

// CookieName is the bearer cookie, named distinctly from the session cookie.
const CookieName = "token"

// Validity is the bearer token lifetime. Tokens cannot be revoked before
// expiry; logout relies on clearing cookies and destroying the session.
const Validity = 7 * 24 * time.Hour

// TokenManager mints and verifies the stateless bearer credential and
// manages its cookie.
type TokenManager struct {
	// CookieConfig holds the shared security baseline for all cookies
	// issued by the server.
	CookieConfig *config.CookieConfig
	// JWTSecret is the secret key used for signing tokens.
	JWTSecret string
	// MaxAge is the cookie lifetime in seconds, matching token expiry.
	MaxAge int
}

func NewTokenManager(cookieConfig *config.CookieConfig, jwtSecret string) *TokenManager {
	return &TokenManager{
		CookieConfig: cookieConfig,
		JWTSecret:    jwtSecret,
		MaxAge:       int(Validity / time.Second),
	}
}

// Generate creates a signed bearer token embedding the user id.
func (tm *TokenManager) Generate(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(userID),
		"jti": uuid.New().String(),
		"exp": time.Now().Add(Validity).Unix(),
	})
	return token.SignedString([]byte(tm.JWTSecret))
}

// GenerateAndSet mints a bearer token and delivers it via the httpOnly token
// cookie.
func (tm *TokenManager) GenerateAndSet(c *gin.Context, userID uint) (string, error) {
	tokenStr, err := tm.Generate(userID)
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}

	tm.setSameSite(c)
	c.SetCookie(CookieName, tokenStr, tm.MaxAge, "/", tm.CookieConfig.Domain, tm.CookieConfig.Secure, true)
	return tokenStr, nil
}

// Verify parses a bearer token, checks the signature and expiry, and returns
// the embedded user id.
func (tm *TokenManager) Verify(tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}
	// jwt-go parses numbers as float64 by default.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, fmt.Errorf("invalid subject")
	}
	return uint(sub), nil
}

// ClearCookie expires the bearer cookie immediately.
func (tm *TokenManager) ClearCookie(c *gin.Context) {
	tm.setSameSite(c)
	c.SetCookie(CookieName, "", -1, "/", tm.CookieConfig.Domain, tm.CookieConfig.Secure, true)
}

func (tm *TokenManager) setSameSite(c *gin.Context) {
	if tm.CookieConfig.CrossSite {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
}
