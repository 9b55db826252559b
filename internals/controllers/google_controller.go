package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/models"
	"github.com/shivang-26/techCommunity-website/internals/oauth"
	"github.com/shivang-26/techCommunity-website/internals/session"
	"github.com/shivang-26/techCommunity-website/internals/tokens"
)

// GoogleAuthController handles only Google-specific OAuth logic.
type GoogleAuthController struct {
	DB           *gorm.DB
	Exchanger    oauth.Exchanger
	TokenManager *tokens.TokenManager
	Sessions     *scs.SessionManager
}

func NewGoogleAuthController(db *gorm.DB, exchanger oauth.Exchanger, tokenManager *tokens.TokenManager, sessions *scs.SessionManager) *GoogleAuthController {
	return &GoogleAuthController{
		DB:           db,
		Exchanger:    exchanger,
		TokenManager: tokenManager,
		Sessions:     sessions,
	}
}

// Auth exchanges the SPA's authorization code for a verified identity and
// logs the user in, creating or linking the local account as needed.
// Calling it twice for the same Google identity resolves to the same user.
func (g *GoogleAuthController) Auth(c *gin.Context) {
	var body struct {
		AuthorizationCode string `json:"authorizationCode"`
	}
	if c.ShouldBindJSON(&body) != nil || body.AuthorizationCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Authorization code is required"})
		return
	}

	claims, err := g.Exchanger.Exchange(c.Request.Context(), body.AuthorizationCode)
	if err != nil {
		slog.Error("google auth failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error authenticating with Google",
			"details": err.Error(),
		})
		return
	}

	email := normalizeEmail(claims.Email)

	var user models.User
	err = g.DB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First federated login creates a pre-verified account with no
		// password.
		user = models.User{
			Username:     claims.Name,
			Email:        email,
			AuthProvider: models.ProviderGoogle,
			Role:         models.RoleUser,
			IsVerified:   true,
			GoogleID:     &claims.Subject,
			PictureURL:   claims.Picture,
		}
		if err := g.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	case user.GoogleID == nil:
		// Existing local account: link the federated identity, backfill
		// the picture if absent.
		user.GoogleID = &claims.Subject
		user.AuthProvider = models.ProviderGoogle
		if user.PictureURL == "" {
			user.PictureURL = claims.Picture
		}
		if err := g.DB.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
	}

	if err := session.Login(g.Sessions, c.Request.Context(), user.Project()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Session error"})
		return
	}
	if _, err := g.TokenManager.GenerateAndSet(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Project()})
}
