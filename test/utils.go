package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"cinderellaapi/models"
	"cinderellaapi/services"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func NewJSONRequestRaw(method string, target string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

// AIStylistMock scripts provider answers per call site and per model, and
// records which image models were attempted in order.
type AIStylistMock struct {
	ChatReply string
	ChatErr   error

	FitReply string
	FitErr   error

	// keyed by model name; a missing key yields an empty payload
	ImageByModel    map[string]string
	ImageErrByModel map[string]error

	ChatContextMessage string
	ChatModelsTried    []string
	FitPrompt          string
	ImageModelsTried   []string
	ImagesSent         [][]services.InlineImage
}

func (m *AIStylistMock) ShiroChat(ctx context.Context, model services.LLMModelName, history []models.ConversationTurn, contextMessage string) (string, error) {
	m.ChatContextMessage = contextMessage
	m.ChatModelsTried = append(m.ChatModelsTried, model.String())
	return m.ChatReply, m.ChatErr
}

func (m *AIStylistMock) FitAnalysis(ctx context.Context, prompt string, subjectImage string) (string, error) {
	m.FitPrompt = prompt
	return m.FitReply, m.FitErr
}

func (m *AIStylistMock) GenerateImage(ctx context.Context, model services.LLMModelName, images []services.InlineImage, prompt string) (string, error) {
	m.ImageModelsTried = append(m.ImageModelsTried, model.String())
	m.ImagesSent = append(m.ImagesSent, images)
	if err, ok := m.ImageErrByModel[model.String()]; ok {
		return "", err
	}
	return m.ImageByModel[model.String()], nil
}

// SynthesizerMock scripts the dedicated image-synthesis chain.
type SynthesizerMock struct {
	ByModel    map[string]string
	ErrByModel map[string]error

	ModelsTried []string
	LastPrompt  string
	LastRefs    []services.ImagenReference
}

func (m *SynthesizerMock) Predict(ctx context.Context, model services.LLMModelName, prompt string, references []services.ImagenReference) (string, error) {
	m.ModelsTried = append(m.ModelsTried, model.String())
	m.LastPrompt = prompt
	m.LastRefs = references
	if err, ok := m.ErrByModel[model.String()]; ok {
		return "", err
	}
	return m.ByModel[model.String()], nil
}
