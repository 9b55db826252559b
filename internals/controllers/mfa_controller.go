package controllers

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/middleware"
	"github.com/shivang-26/techCommunity-website/internals/models"
	"github.com/shivang-26/techCommunity-website/internals/session"
	"github.com/shivang-26/techCommunity-website/internals/tokens"
	"github.com/shivang-26/techCommunity-website/internals/utils"
)

// MFAController handles optional authenticator-app 2FA on top of password
// login. The TOTP secret is stored AES-GCM encrypted.
type MFAController struct {
	DB           *gorm.DB
	TokenManager *tokens.TokenManager
	Sessions     *scs.SessionManager
	// AppName is the TOTP issuer shown in authenticator apps.
	AppName       string
	EncryptionKey string
}

func NewMFAController(db *gorm.DB, tokenManager *tokens.TokenManager, sessions *scs.SessionManager, appName string, encryptionKey string) *MFAController {
	return &MFAController{
		DB:            db,
		TokenManager:  tokenManager,
		Sessions:      sessions,
		AppName:       appName,
		EncryptionKey: encryptionKey,
	}
}

func (m *MFAController) Setup2FA(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.AppName,
		AccountName: user.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate 2FA key"})
		return
	}

	encryptedSecret, err := utils.Encrypt(key.Secret(), m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to encrypt 2FA secret"})
		return
	}

	if err := m.DB.Model(&user).Update("two_fa_secret", encryptedSecret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	// QR code as a base64 data URL so the SPA can render it inline.
	img, _ := key.Image(200, 200)
	var buf bytes.Buffer
	png.Encode(&buf, img)
	imgBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	c.JSON(http.StatusOK, gin.H{
		"secret":      key.Secret(),
		"qr_code_url": "data:image/png;base64," + imgBase64,
	})
}

func (m *MFAController) Activate2FA(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if c.ShouldBindJSON(&body) != nil || body.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Code is required"})
		return
	}

	decryptedSecret, err := utils.Decrypt(user.TwoFASecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decrypt 2FA secret"})
		return
	}

	if !totp.Validate(body.Code, decryptedSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
		return
	}

	if err := m.DB.Model(&user).Update("two_fa_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA activated successfully"})
}

// LoginVerify2FA completes a login that Login deferred because the account
// has 2FA enabled. On success it mints the same session + bearer pair a
// plain login would.
func (m *MFAController) LoginVerify2FA(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if c.ShouldBindJSON(&body) != nil || body.Email == "" || body.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and Code are required"})
		return
	}

	var user models.User
	if err := m.DB.Where("email = ?", normalizeEmail(body.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	if !user.TwoFAEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"message": "2FA is not enabled for this account"})
		return
	}

	decryptedSecret, err := utils.Decrypt(user.TwoFASecret, m.EncryptionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process security key"})
		return
	}

	if !totp.Validate(body.Code, decryptedSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
		return
	}

	if err := session.Login(m.Sessions, c.Request.Context(), user.Project()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Session error"})
		return
	}
	if _, err := m.TokenManager.GenerateAndSet(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful! Redirecting to dashboard.", "user": user.Project()})
}
