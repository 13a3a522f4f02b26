package controllers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"cinderellaapi/models"
	"cinderellaapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

const maxReferencePhotos = 3

type GenerateAvatarIn struct {
	Measurements      *models.Measurements        `json:"measurements"`
	Appearance        models.AppearanceDescriptor `json:"appearance"`
	Variant           string                      `json:"variant"`
	Feedback          string                      `json:"feedback"`
	ReferencePhotos   []string                    `json:"referencePhotos"`
	PreviousAvatarURL string                      `json:"previousAvatarUrl"`
}

type GenerateAvatarResponse struct {
	URL      string `json:"url"`
	AvatarID string `json:"avatarId"`
	Variant  string `json:"variant"`
}

type AvatarController struct {
	AI          services.AIStylistProvider
	Synthesizer services.ImageSynthesizer
	Assets      services.AssetStoreProvider
	Avatars     *services.AvatarResolver
	UpstreamURL string
}

func (controller *AvatarController) AvatarRoutes(g *echo.Group) {
	g.POST("/generate", controller.Generate)
}

// Generate creates a persistent avatar for the shopper. Reference photos
// and the previous avatar (on a regeneration with feedback) route through
// the multimodal chain so the likeness carries over; without any reference
// the Imagen chain goes first for quality, multimodal second. Every success
// is background-whitened and written to the asset store.
func (controller *AvatarController) Generate(c echo.Context) error {
	var req GenerateAvatarIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Appearance.FullDescription == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Appearance description is required"})
	}
	if len(req.ReferencePhotos) > maxReferencePhotos {
		req.ReferencePhotos = req.ReferencePhotos[:maxReferencePhotos]
	}

	ctx := c.Request().Context()
	variant, _ := services.LookupPoseVariant(req.Variant)
	prompt := services.BuildAvatarPrompt(req.Measurements, req.Appearance, variant, req.Feedback)

	var images []services.InlineImage
	if previous := controller.Avatars.ResolveBase64(ctx, req.PreviousAvatarURL); previous != "" {
		images = append(images, services.InlineImage{MIMEType: "image/png", B64: previous})
	}
	for _, photo := range req.ReferencePhotos {
		if !services.IsLikelyImagePayload(photo) {
			continue
		}
		images = append(images, services.InlineImage{MIMEType: "image/jpeg", B64: services.StripDataURIPrefix(photo)})
	}

	var result services.ChainResult
	if len(images) > 0 {
		result = services.TryModelsInOrder(ctx, "Avatar", services.MultimodalModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
			return controller.AI.GenerateImage(attemptCtx, model, images, prompt)
		})
	} else {
		result = services.TryModelsInOrder(ctx, "Avatar", services.ImagenModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
			return controller.Synthesizer.Predict(attemptCtx, model, prompt, nil)
		})
		if !result.OK {
			result = services.TryModelsInOrder(ctx, "Avatar", services.MultimodalModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
				return controller.AI.GenerateImage(attemptCtx, model, nil, prompt)
			})
		}
	}

	if !result.OK {
		return c.JSON(http.StatusOK, map[string]string{"error": "Avatar generation is unavailable right now, please try again"})
	}

	data, err := base64.StdEncoding.DecodeString(services.StripDataURIPrefix(result.Payload))
	if err != nil {
		fmt.Println("[Avatar] Undecodable generation payload:", err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusOK, map[string]string{"error": "Avatar generation is unavailable right now, please try again"})
	}

	if whitened, err := services.WhitenBackgroundFeathered(data, 200, 240, 0.55); err != nil {
		fmt.Println("[Avatar] Background whitening skipped:", err)
	} else {
		data = whitened
	}

	asset, url, err := controller.Assets.Save(variant, data)
	if err != nil {
		fmt.Println("[Avatar] Failed to persist avatar:", err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save avatar"})
	}

	return c.JSON(http.StatusOK, GenerateAvatarResponse{URL: url, AvatarID: asset.ID, Variant: asset.Variant})
}

// ServeAvatar answers from the local asset store when the file exists and
// falls back to proxying the upstream copy otherwise. The store only holds
// flat filenames; nested paths go straight upstream.
func (controller *AvatarController) ServeAvatar(c echo.Context) error {
	id := c.Param("*")
	if !strings.Contains(id, "/") {
		if data, err := controller.Assets.Read(id); err == nil {
			return c.Blob(http.StatusOK, "image/png", data)
		}
	}

	upstream := controller.UpstreamURL + "/avatars/" + id
	data, err := services.ReadFileFromUrl(upstream)
	if err != nil {
		fmt.Println("[Avatar] Upstream avatar fetch failed:", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Proxy error"})
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
