package controllers

import (
	"net/http"

	"cinderellaapi/services"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		// Optionally, you could return the error to give each route more control over the status code
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type ServerConfig struct {
	UpstreamURL string
	StaticDir   string
}

func SetupServer(
	aiProvider services.AIStylistProvider,
	synthesizer services.ImageSynthesizer,
	assetStore services.AssetStoreProvider,
	avatarResolver *services.AvatarResolver,
	config ServerConfig,
) *echo.Echo {

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	shiroController := ShiroController{AI: aiProvider}
	shiroGroup := e.Group("/api/shiro")
	shiroController.ShiroRoutes(shiroGroup)

	tryOnController := TryOnController{
		AI:          aiProvider,
		Synthesizer: synthesizer,
		Avatars:     avatarResolver,
	}
	tryOnGroup := e.Group("/api/tryon")
	tryOnController.TryOnRoutes(tryOnGroup)

	avatarController := AvatarController{
		AI:          aiProvider,
		Synthesizer: synthesizer,
		Assets:      assetStore,
		Avatars:     avatarResolver,
		UpstreamURL: config.UpstreamURL,
	}
	avatarGroup := e.Group("/api/avatar")
	avatarController.AvatarRoutes(avatarGroup)
	e.GET("/avatars/*", avatarController.ServeAvatar)

	proxyController := ProxyController{UpstreamURL: config.UpstreamURL}
	// Remaining /api traffic belongs to the game backend. Echo matches the
	// specific groups above before this catch-all.
	e.Any("/api/*", proxyController.Passthrough)

	if config.StaticDir != "" {
		e.Static("/", config.StaticDir)
	}

	return e
}
