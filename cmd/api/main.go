package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"cinderellaapi/controllers"
	"cinderellaapi/services"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment")
	}

	err := sentry.Init(sentry.ClientOptions{
		// Either set your DSN here or set the SENTRY_DSN environment variable.
		Dsn:         services.GetEnv("SENTRY_DSN", ""),
		Environment: services.GetEnv("ENV", "local"),
		Release:     "cinderellago@1.0.0",
		// Set TracesSampleRate to 1.0 to capture 100%
		// of transactions for performance monitoring.
		// We recommend adjusting this value in production,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	apiKey := services.GetEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set!")
	}
	upstreamURL := services.GetEnv("CINDERELLA_URL", "https://cinderella.clawbridge.org")

	assetStore, err := services.NewLocalAssetStore(services.GetEnv("AVATAR_DIR", "avatars"))
	if err != nil {
		log.Fatalf("Failed to initialize avatar store: %v", err)
	}
	avatarResolver, err := services.NewAvatarResolver(assetStore, upstreamURL)
	if err != nil {
		log.Fatal("Failed to initialize avatar cache service")
	}

	e := controllers.SetupServer(
		services.GoogleAIService{APIKey: apiKey},
		services.ImagenService{APIKey: apiKey, Client: &http.Client{Timeout: 90 * time.Second}},
		assetStore,
		avatarResolver,
		controllers.ServerConfig{
			UpstreamURL: upstreamURL,
			StaticDir:   services.GetEnv("STATIC_DIR", "public"),
		},
	)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Logger.Fatal(e.Start(":" + services.GetEnv("PORT", "3003")))
}
