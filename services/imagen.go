package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Imagen customization is only reachable through the raw :predict REST
// surface, so this service speaks HTTP directly instead of going through
// the genai SDK like the chat paths do.

const imagenEndpointBase = "https://generativelanguage.googleapis.com/v1beta/models"

type imagenReferenceImagePayload struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type imagenReferenceImage struct {
	ReferenceType  int                         `json:"referenceType"`
	ReferenceImage imagenReferenceImagePayload `json:"referenceImage"`
}

type imagenInstance struct {
	Prompt          string                 `json:"prompt"`
	ReferenceImages []imagenReferenceImage `json:"referenceImages,omitempty"`
}

type imagenParameters struct {
	SampleCount      int    `json:"sampleCount"`
	AspectRatio      string `json:"aspectRatio"`
	PersonGeneration string `json:"personGeneration"`
}

type imagenPredictRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenPrediction struct {
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type imagenPredictResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

// Reference roles on the :predict API. Subject references anchor identity,
// style references anchor rendering aesthetics.
const (
	ImagenReferenceStyle   = 1
	ImagenReferenceSubject = 2
)

// ImagenReference pairs a raw or data-URI base64 image with its role.
type ImagenReference struct {
	B64  string
	Role int
}

// ImageSynthesizer is the photoreal try-on surface, mockable for tests.
type ImageSynthesizer interface {
	Predict(ctx context.Context, model LLMModelName, prompt string, references []ImagenReference) (string, error)
}

type ImagenService struct {
	APIKey string
	Client *http.Client
}

func (s ImagenService) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// Predict issues one customization call. Subject references go first so the
// model weighs identity over style. Returns a data URI, or "" when the model
// answers without image bytes — the fallback executor reads "" as a miss.
func (s ImagenService) Predict(ctx context.Context, model LLMModelName, prompt string, references []ImagenReference) (string, error) {
	instance := imagenInstance{Prompt: prompt}
	for _, ref := range references {
		if ref.Role != ImagenReferenceSubject {
			continue
		}
		instance.ReferenceImages = append(instance.ReferenceImages, imagenReferenceImage{
			ReferenceType:  ref.Role,
			ReferenceImage: imagenReferenceImagePayload{BytesBase64Encoded: StripDataURIPrefix(ref.B64)},
		})
	}
	for _, ref := range references {
		if ref.Role == ImagenReferenceSubject {
			continue
		}
		instance.ReferenceImages = append(instance.ReferenceImages, imagenReferenceImage{
			ReferenceType:  ref.Role,
			ReferenceImage: imagenReferenceImagePayload{BytesBase64Encoded: StripDataURIPrefix(ref.B64)},
		})
	}

	body, err := json.Marshal(imagenPredictRequest{
		Instances: []imagenInstance{instance},
		Parameters: imagenParameters{
			SampleCount:      1,
			AspectRatio:      "3:4",
			PersonGeneration: "allow_all",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal predict request: %v", err)
	}

	url := fmt.Sprintf("%s/%s:predict?key=%s", imagenEndpointBase, model.String(), s.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create predict request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("predict call failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read predict response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("predict returned status %d: %s", resp.StatusCode, truncateForLog(respBody))
	}

	var parsed imagenPredictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse predict response: %v", err)
	}
	if len(parsed.Predictions) == 0 || parsed.Predictions[0].BytesBase64Encoded == "" {
		return "", nil
	}

	prediction := parsed.Predictions[0]
	data, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
	if err != nil {
		return "", fmt.Errorf("predict returned undecodable image: %v", err)
	}
	return DataURI(prediction.MimeType, data), nil
}

func truncateForLog(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
