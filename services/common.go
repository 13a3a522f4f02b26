package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

var dataURIPrefixRegex = regexp.MustCompile(`^data:[a-zA-Z0-9.+/-]+;base64,`)

// StripDataURIPrefix accepts either raw base64 or a data URI and returns the
// bare base64 payload. Clients send both interchangeably.
func StripDataURIPrefix(encoded string) string {
	if loc := dataURIPrefixRegex.FindStringIndex(encoded); loc != nil {
		return encoded[loc[1]:]
	}
	return encoded
}

// DataURI assembles the normalized image output contract. Mime defaults to
// PNG when the provider does not say.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// ReadFileFromUrl downloads a file with a bounded timeout. Redirects are
// followed by the default client policy.
func ReadFileFromUrl(url string) ([]byte, error) {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	return content, nil
}

// IsLikelyImagePayload filters out garbage like empty strings or stub values
// the game client sometimes sends for optional image fields.
func IsLikelyImagePayload(encoded string) bool {
	return len(strings.TrimSpace(encoded)) > 100
}
