package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cinderellaapi/models"
	"cinderellaapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

const (
	analysisTimeout = 30 * time.Second
	imageTimeout    = 90 * time.Second
)

type FitAnalysisIn struct {
	ImageBase64  string `json:"imageBase64"`
	GarmentName  string `json:"garmentName"`
	GarmentBrand string `json:"garmentBrand"`
	GarmentPrice string `json:"garmentPrice"`
}

type AvatarTryOnIn struct {
	AvatarURL    string               `json:"avatarUrl"`
	GarmentImage string               `json:"garmentImage"`
	GarmentName  string               `json:"garmentName"`
	GarmentBrand string               `json:"garmentBrand"`
	Measurements *models.Measurements `json:"measurements"`
	SelectedSize string               `json:"selectedSize"`
	UsualSize    string               `json:"usualSize"`
}

type GenerateTryOnIn struct {
	PersonImage       string `json:"personImage"`
	GarmentImage      string `json:"garmentImage"`
	OutfitDescription string `json:"outfitDescription"`
}

type TryOnImageResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image,omitempty"`
}

type TryOnController struct {
	AI          services.AIStylistProvider
	Synthesizer services.ImageSynthesizer
	Avatars     *services.AvatarResolver
}

func (controller *TryOnController) TryOnRoutes(g *echo.Group) {
	g.POST("", controller.FitAnalysis)
	g.POST("/avatar-tryon", controller.AvatarTryOn)
	g.POST("/generate", controller.Generate)
}

// FitAnalysis asks the chat model for a structured fit report on a garment,
// optionally against the shopper's photo. Unlike the image endpoints this is
// a hard contract: an unparseable reply is a 500, not a degraded answer.
func (controller *TryOnController) FitAnalysis(c echo.Context) error {
	var req FitAnalysisIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), analysisTimeout)
	defer cancel()

	prompt := services.BuildFitAnalysisPrompt(models.GarmentDescriptor{
		Name:  req.GarmentName,
		Brand: req.GarmentBrand,
		Price: req.GarmentPrice,
	})

	text, err := controller.AI.FitAnalysis(ctx, prompt, req.ImageBase64)
	if err != nil {
		fmt.Println("[TryOn] Fit analysis provider error:", err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Fit analysis failed"})
	}

	var report models.FitReport
	if err := services.UnmarshalFirstJSONObject(text, &report); err != nil {
		fmt.Println("[TryOn] Unusable fit analysis reply:", err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to parse fit analysis"})
	}
	return c.JSON(http.StatusOK, report)
}

// AvatarTryOn renders the shopper's avatar wearing a garment. A missing
// garment image is the only hard error; after that every failure is soft:
// the Imagen chain runs first when an avatar resolves, the multimodal chain
// mops up, and full exhaustion answers 200 with success=false.
func (controller *TryOnController) AvatarTryOn(c echo.Context) error {
	var req AvatarTryOnIn
	if err := c.Bind(&req); err != nil {
		fmt.Println("[TryOn] Bad avatar-tryon body:", err)
		return c.JSON(http.StatusOK, TryOnImageResponse{Success: false})
	}
	if req.GarmentImage == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No garment image"})
	}

	ctx := c.Request().Context()
	avatarB64 := controller.Avatars.ResolveBase64(ctx, req.AvatarURL)
	garmentB64 := services.StripDataURIPrefix(req.GarmentImage)

	garmentLabel := services.GarmentLabel(req.GarmentName, req.GarmentBrand)
	fitPhrase := services.FitDeltaPhrase(req.SelectedSize, req.UsualSize)
	measurementsBlock := services.RenderMeasurements(req.Measurements)

	var result services.ChainResult
	if avatarB64 != "" {
		prompt := services.BuildTryOnPrompt(garmentLabel, fitPhrase, measurementsBlock)
		references := []services.ImagenReference{
			{B64: avatarB64, Role: services.ImagenReferenceSubject},
			{B64: garmentB64, Role: services.ImagenReferenceStyle},
		}
		result = services.TryModelsInOrder(ctx, "TryOn", services.ImagenModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
			return controller.Synthesizer.Predict(attemptCtx, model, prompt, references)
		})
	}

	if !result.OK {
		prompt := services.BuildMultimodalTryOnPrompt(garmentLabel, fitPhrase, measurementsBlock, avatarB64 != "")
		var images []services.InlineImage
		if avatarB64 != "" {
			images = append(images, services.InlineImage{MIMEType: "image/png", B64: avatarB64})
		}
		images = append(images, services.InlineImage{MIMEType: "image/jpeg", B64: garmentB64})
		result = services.TryModelsInOrder(ctx, "TryOn", services.MultimodalModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
			return controller.AI.GenerateImage(attemptCtx, model, images, prompt)
		})
	}

	if !result.OK {
		return c.JSON(http.StatusOK, TryOnImageResponse{Success: false})
	}
	return c.JSON(http.StatusOK, TryOnImageResponse{Success: true, Image: result.Payload})
}

// Generate is the looser try-on: any combination of person image, garment
// image and outfit text, multimodal chain only, always a 200.
func (controller *TryOnController) Generate(c echo.Context) error {
	var req GenerateTryOnIn
	if err := c.Bind(&req); err != nil {
		fmt.Println("[TryOn/Generate] Bad body:", err)
		return c.JSON(http.StatusOK, TryOnImageResponse{Success: false})
	}

	var images []services.InlineImage
	if req.PersonImage != "" {
		images = append(images, services.InlineImage{MIMEType: "image/jpeg", B64: services.StripDataURIPrefix(req.PersonImage)})
	}
	if req.GarmentImage != "" {
		images = append(images, services.InlineImage{MIMEType: "image/jpeg", B64: services.StripDataURIPrefix(req.GarmentImage)})
	}
	prompt := services.BuildOutfitPrompt(req.OutfitDescription)

	result := services.TryModelsInOrder(c.Request().Context(), "TryOn/Generate", services.MultimodalModelChain, imageTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
		return controller.AI.GenerateImage(attemptCtx, model, images, prompt)
	})

	if !result.OK {
		return c.JSON(http.StatusOK, TryOnImageResponse{Success: false})
	}
	return c.JSON(http.StatusOK, TryOnImageResponse{Success: true, Image: result.Payload})
}
