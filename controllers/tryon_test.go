package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinderellaapi/services"
	"cinderellaapi/test"

	"github.com/stretchr/testify/assert"
)

var garmentB64 = base64.StdEncoding.EncodeToString([]byte("fake-garment-image-bytes"))
var avatarB64 = base64.StdEncoding.EncodeToString([]byte("fake-avatar-image-bytes"))

func TestFitAnalysisStructuredReport(t *testing.T) {
	ai := &test.AIStylistMock{
		FitReply: "```json\n{\"fitScore\": 8.5, \"overallVerdict\": \"Great match\", \"stylingTips\": [\"tuck the front\"], \"occasions\": [\"brunch\"]}\n```",
	}
	_, e := setupTestServer(t, ai, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon", map[string]interface{}{
		"garmentName":  "Barrel Jeans",
		"garmentBrand": "Zara",
		"garmentPrice": "$45.90",
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 8.5, payload["fitScore"])
	assert.Equal(t, "Great match", payload["overallVerdict"])

	assert.Contains(t, ai.FitPrompt, "Garment: Barrel Jeans by Zara ($45.90)")
}

func TestFitAnalysisUnparseableReplyIsHardError(t *testing.T) {
	ai := &test.AIStylistMock{FitReply: "I think it looks lovely on you, no JSON today."}
	_, e := setupTestServer(t, ai, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon", map[string]interface{}{"garmentName": "Barrel Jeans"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFitAnalysisProviderFailure(t *testing.T) {
	ai := &test.AIStylistMock{FitErr: errors.New("model offline")}
	_, e := setupTestServer(t, ai, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon", map[string]interface{}{"garmentName": "Barrel Jeans"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAvatarTryOnMissingGarmentImage(t *testing.T) {
	_, e := setupTestServer(t, &test.AIStylistMock{}, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon/avatar-tryon", map[string]interface{}{"garmentName": "Barrel Jeans"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvatarTryOnImagenFirstWhenAvatarResolves(t *testing.T) {
	synth := &test.SynthesizerMock{
		ByModel: map[string]string{"imagen-4.0-ultra-generate-001": "data:image/png;base64," + avatarB64},
	}
	ai := &test.AIStylistMock{}
	_, e := setupTestServer(t, ai, synth)

	req := test.NewJSONRequest("POST", "/api/tryon/avatar-tryon", map[string]interface{}{
		"avatarUrl":    "data:image/png;base64," + avatarB64,
		"garmentImage": garmentB64,
		"garmentName":  "Barrel Jeans",
		"garmentBrand": "Zara",
		"selectedSize": "M",
		"usualSize":    "M",
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "data:image/png;base64,"+avatarB64, payload["image"])

	// first candidate satisfied the chain, multimodal never ran
	assert.Equal(t, []string{"imagen-4.0-ultra-generate-001"}, synth.ModelsTried)
	assert.Empty(t, ai.ImageModelsTried)

	// subject reference (avatar) must precede the style reference (garment)
	assert.Len(t, synth.LastRefs, 2)
	assert.Equal(t, services.ImagenReferenceSubject, synth.LastRefs[0].Role)
	assert.Equal(t, services.ImagenReferenceStyle, synth.LastRefs[1].Role)
	assert.Contains(t, synth.LastPrompt, "Size M — perfect fit")
}

func TestAvatarTryOnFallsBackToMultimodal(t *testing.T) {
	synth := &test.SynthesizerMock{
		ErrByModel: map[string]error{
			"imagen-4.0-ultra-generate-001": errors.New("quota"),
			"imagen-4.0-generate-001":       errors.New("quota"),
		},
	}
	ai := &test.AIStylistMock{
		ImageErrByModel: map[string]error{"gemini-2.5-flash-image-preview": errors.New("blocked")},
		ImageByModel:    map[string]string{"gemini-2.0-flash-preview-image-generation": "data:image/png;base64," + avatarB64},
	}
	_, e := setupTestServer(t, ai, synth)

	req := test.NewJSONRequest("POST", "/api/tryon/avatar-tryon", map[string]interface{}{
		"avatarUrl":    "data:image/png;base64," + avatarB64,
		"garmentImage": garmentB64,
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])

	assert.Equal(t, []string{"imagen-4.0-ultra-generate-001", "imagen-4.0-generate-001"}, synth.ModelsTried)
	assert.Equal(t, []string{"gemini-2.5-flash-image-preview", "gemini-2.0-flash-preview-image-generation"}, ai.ImageModelsTried)

	// avatar and garment both attached on the multimodal path
	assert.Len(t, ai.ImagesSent[len(ai.ImagesSent)-1], 2)
}

func TestAvatarTryOnWithoutAvatarSkipsImagen(t *testing.T) {
	synth := &test.SynthesizerMock{}
	ai := &test.AIStylistMock{
		ImageByModel: map[string]string{"gemini-2.5-flash-image-preview": "data:image/png;base64," + avatarB64},
	}
	_, e := setupTestServer(t, ai, synth)

	req := test.NewJSONRequest("POST", "/api/tryon/avatar-tryon", map[string]interface{}{
		"garmentImage": garmentB64,
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, synth.ModelsTried)
	assert.Equal(t, []string{"gemini-2.5-flash-image-preview"}, ai.ImageModelsTried)
	// only the garment attached when no avatar resolved
	assert.Len(t, ai.ImagesSent[0], 1)
}

func TestAvatarTryOnExhaustionIsSoftFailure(t *testing.T) {
	synth := &test.SynthesizerMock{}
	ai := &test.AIStylistMock{}
	_, e := setupTestServer(t, ai, synth)

	req := test.NewJSONRequest("POST", "/api/tryon/avatar-tryon", map[string]interface{}{
		"avatarUrl":    "data:image/png;base64," + avatarB64,
		"garmentImage": garmentB64,
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
	assert.NotContains(t, payload, "image")
}

func TestGenerateTryOnOutfitDescription(t *testing.T) {
	ai := &test.AIStylistMock{
		ImageByModel: map[string]string{"gemini-2.5-flash-image-preview": "data:image/png;base64," + avatarB64},
	}
	_, e := setupTestServer(t, ai, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon/generate", map[string]interface{}{
		"personImage":       "data:image/jpeg;base64," + avatarB64,
		"garmentImage":      garmentB64,
		"outfitDescription": "Striped Polo Knit with Brown Wide-Leg Pants",
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Len(t, ai.ImagesSent[0], 2)
}

func TestGenerateTryOnExhaustion(t *testing.T) {
	_, e := setupTestServer(t, &test.AIStylistMock{}, &test.SynthesizerMock{})

	req := test.NewJSONRequest("POST", "/api/tryon/generate", map[string]interface{}{
		"garmentImage": garmentB64,
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
}
