package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/controllers"
	"github.com/shivang-26/techCommunity-website/internals/mail"
	"github.com/shivang-26/techCommunity-website/internals/middleware"
	"github.com/shivang-26/techCommunity-website/internals/oauth"
	"github.com/shivang-26/techCommunity-website/internals/otp"
	"github.com/shivang-26/techCommunity-website/internals/session"
	"github.com/shivang-26/techCommunity-website/internals/tokens"
)

// SetupRouter assembles the API. The mailer and OAuth exchanger are passed
// in so tests can substitute fakes without touching the wiring.
func SetupRouter(db *gorm.DB, mailer mail.Sender, exchanger oauth.Exchanger) (*gin.Engine, error) {
	r := gin.Default()

	appName := config.GetEnvAsStr("APP_NAME", "TechCommunity")
	jwtSecret := config.GetEnv("JWT_SECRET_KEY")
	encryptionKey := config.GetEnv("ENCRYPTION_KEY")

	cookieCfg := &config.CookieConfig{
		Domain:    config.GetEnvAsStr("DOMAIN", ""),
		Secure:    config.GetEnvAsBool("SECURE_COOKIE", false),
		CrossSite: config.GetEnvAsBool("CROSS_SITE_COOKIES", false),
	}

	sessionLifetime := time.Duration(config.GetEnvAsInt("SESSION_MAX_AGE_MINUTES", 60, true)) * time.Minute
	sessions, err := session.NewManager(db, cookieCfg, sessionLifetime)
	if err != nil {
		return nil, err
	}

	tokenManager := tokens.NewTokenManager(cookieCfg, jwtSecret)
	otps := otp.NewStore(db)

	authMiddleware := middleware.NewRequireAuthMiddleware(db, sessions, tokenManager)
	authCtrl := controllers.NewAuthController(db, mailer, otps, tokenManager, sessions)
	googleCtrl := controllers.NewGoogleAuthController(db, exchanger, tokenManager, sessions)
	mfaCtrl := controllers.NewMFAController(db, tokenManager, sessions, appName, encryptionKey)
	forumCtrl := controllers.NewForumController(db)

	// Credentialed CORS for the SPA origin.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnvAsStr("CLIENT_URL", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Every route sees the session, so login can mint it anywhere.
	r.Use(session.LoadAndSave(sessions))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/verify-otp", authCtrl.VerifyOtp)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/logout", authCtrl.Logout)
		auth.POST("/google", googleCtrl.Auth)
		auth.POST("/forgot-password", authCtrl.ForgotPassword)
		auth.POST("/verify-reset-otp", authCtrl.VerifyResetOtp)
		auth.POST("/reset-password", authCtrl.ResetPassword)
		auth.POST("/2fa/login-verify", mfaCtrl.LoginVerify2FA)
		auth.GET("/profile-picture/:userId", authCtrl.ServeProfilePicture)

		protected := auth.Group("")
		protected.Use(authMiddleware.RequireAuth)
		{
			protected.GET("/me", authCtrl.Me)
			protected.POST("/change-password", authCtrl.ChangePassword)
			protected.POST("/upload-profile-pic", authCtrl.UploadProfilePicture)
			protected.POST("/2fa/setup", mfaCtrl.Setup2FA)
			protected.POST("/2fa/activate", mfaCtrl.Activate2FA)
		}
	}

	forum := r.Group("/api/forum")
	{
		forum.GET("", forumCtrl.GetPosts)

		protected := forum.Group("")
		protected.Use(authMiddleware.RequireAuth)
		{
			protected.POST("", forumCtrl.CreatePost)
			protected.PUT("/:id/vote", forumCtrl.VotePost)
			protected.POST("/:id/answer", forumCtrl.AddAnswer)
			protected.DELETE("/:id", forumCtrl.DeletePost)
			protected.DELETE("/:id/answer/:answerId", forumCtrl.DeleteAnswer)
		}
	}

	return r, nil
}
