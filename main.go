package main

import (
	"log"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/initializers"
	"github.com/shivang-26/techCommunity-website/internals/mail"
	"github.com/shivang-26/techCommunity-website/internals/oauth"
	"github.com/shivang-26/techCommunity-website/internals/routes"
)

func main() {
	initializers.LoadEnvVariables()
	initializers.SetupLogger()

	// Fail fast: a server without a signing secret would turn every
	// authenticated request into a 500 at runtime instead.
	if config.GetEnv("JWT_SECRET_KEY") == "" {
		log.Fatal("JWT_SECRET_KEY must be set")
	}

	db, err := initializers.ConnectToDb()
	if err != nil {
		log.Fatal(err)
	}

	initializers.StartOTPCleanup(db)

	mailer, err := mail.NewSMTPSender(&mail.SMTPConfig{
		Host:     config.GetEnv("SMTP_HOST"),
		Port:     config.GetEnvAsInt("SMTP_PORT", 587, true),
		User:     config.GetEnv("SMTP_USER"),
		Password: config.GetEnv("SMTP_PASS"),
		AppName:  config.GetEnvAsStr("APP_NAME", "TechCommunity"),
	})
	if err != nil {
		log.Fatal(err)
	}

	exchanger := oauth.NewGoogleExchanger()

	r, err := routes.SetupRouter(db, mailer, exchanger)
	if err != nil {
		log.Fatal(err)
	}

	if err := r.Run(":" + config.GetEnvAsStr("PORT", "3000")); err != nil {
		log.Fatal(err)
	}
}
