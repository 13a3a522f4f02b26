package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"cinderellaapi/models"

	"google.golang.org/genai"
)

// LLMModelName enumerates every model identifier the fallback chains use.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	Flash25Image
	Flash20PreviewImage
	Imagen4Ultra
	Imagen4
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25:
		return "gemini-2.5-flash"
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash20PreviewImage:
		return "gemini-2.0-flash-preview-image-generation"
	case Imagen4Ultra:
		return "imagen-4.0-ultra-generate-001"
	case Imagen4:
		return "imagen-4.0-generate-001"
	default:
		return "gemini-2.5-flash"
	}
}

// Chat candidates are a one-element chain today; the executor keeps the
// behavior identical while leaving room to append cheaper fallbacks.
var (
	ChatModelChain       = []LLMModelName{Flash25}
	ImagenModelChain     = []LLMModelName{Imagen4Ultra, Imagen4}
	MultimodalModelChain = []LLMModelName{Flash25Image, Flash20PreviewImage}
)

// InlineImage is a provider-neutral inline attachment. B64 may carry a data
// URI prefix; the adapter strips it before embedding.
type InlineImage struct {
	MIMEType string
	B64      string
}

// AIStylistProvider is the chat/multimodal surface of the Gemini backend,
// kept as an interface so controller tests can swap in mocks.
type AIStylistProvider interface {
	ShiroChat(ctx context.Context, model LLMModelName, history []models.ConversationTurn, contextMessage string) (string, error)
	FitAnalysis(ctx context.Context, prompt string, subjectImage string) (string, error)
	GenerateImage(ctx context.Context, model LLMModelName, images []InlineImage, prompt string) (string, error)
}

type GoogleAIService struct {
	APIKey string
}

func (s GoogleAIService) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func floatPointer(f float32) *float32 {
	return &f
}

// ShiroChat replays the client-held session history and the synthesized
// game-state turn against one chat model candidate. Returns the raw model
// text; JSON extraction happens in the controller so the degrade path stays
// there.
func (s GoogleAIService) ShiroChat(ctx context.Context, model LLMModelName, history []models.ConversationTurn, contextMessage string) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %v", err)
	}

	var contents []*genai.Content
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: contextMessage}},
	})

	result, err := client.Models.GenerateContent(ctx, model.String(), contents, &genai.GenerateContentConfig{
		Temperature:      floatPointer(0.9),
		MaxOutputTokens:  1024,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: ShiroSystemPrompt}},
		},
	})
	if err != nil {
		return "", err
	}
	if result.PromptFeedback != nil {
		fmt.Println("[Shiro] Prompt blocked:", result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
		return "", fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}
	return result.Text(), nil
}

// FitAnalysis sends the garment analysis instruction plus the optional
// subject photo. The subject image leads so the model treats it as primary.
func (s GoogleAIService) FitAnalysis(ctx context.Context, prompt string, subjectImage string) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %v", err)
	}

	var parts []*genai.Part
	if IsLikelyImagePayload(subjectImage) {
		data, decodeErr := base64.StdEncoding.DecodeString(StripDataURIPrefix(subjectImage))
		if decodeErr != nil {
			fmt.Println("[TryOn] Skipping undecodable subject image:", decodeErr)
		} else {
			parts = append(parts, genai.NewPartFromBytes(data, "image/jpeg"))
		}
	}
	parts = append(parts, &genai.Part{Text: prompt})

	result, err := client.Models.GenerateContent(ctx, Flash25.String(), []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, &genai.GenerateContentConfig{
		Temperature:      floatPointer(0.7),
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	if result.PromptFeedback != nil {
		return "", fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}
	return result.Text(), nil
}

// GenerateImage is one candidate attempt of the multimodal chain: ordered
// inline reference images then the instruction text, asking for combined
// text+image output. Returns a data URI, or "" when the response carries no
// inline image (the executor treats that as fallthrough).
func (s GoogleAIService) GenerateImage(ctx context.Context, model LLMModelName, images []InlineImage, prompt string) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %v", err)
	}

	var parts []*genai.Part
	for _, img := range images {
		data, decodeErr := base64.StdEncoding.DecodeString(StripDataURIPrefix(img.B64))
		if decodeErr != nil {
			return "", fmt.Errorf("failed to decode reference image: %v", decodeErr)
		}
		mime := img.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(data, mime))
	}
	parts = append(parts, &genai.Part{Text: prompt})

	result, err := client.Models.GenerateContent(ctx, model.String(), []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, &genai.GenerateContentConfig{
		CandidateCount:     1,
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return "", err
	}
	if result.PromptFeedback != nil {
		return "", fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}

	mime, data := FirstInlineImage(result)
	if len(data) == 0 {
		return "", nil
	}
	return DataURI(mime, data), nil
}

// FirstInlineImage scans candidate parts for the first inline binary image.
func FirstInlineImage(result *genai.GenerateContentResponse) (string, []byte) {
	if result == nil {
		return "", nil
	}
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if len(part.InlineData.Data) == 0 {
				continue
			}
			if part.InlineData.MIMEType != "" && !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			return part.InlineData.MIMEType, part.InlineData.Data
		}
	}
	return "", nil
}
