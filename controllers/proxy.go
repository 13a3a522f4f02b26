package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// The game backend can sit on AI latency for its own endpoints, so the
// passthrough budget is deliberately generous.
const proxyTimeout = 120 * time.Second

type ProxyController struct {
	UpstreamURL string
	Client      *http.Client
}

func (controller *ProxyController) httpClient() *http.Client {
	if controller.Client != nil {
		return controller.Client
	}
	return &http.Client{Timeout: proxyTimeout}
}

// Passthrough forwards any unhandled /api request to the Cinderella backend
// verbatim: same method, path, query and body. Upstream status and body come
// back untouched; only transport failures become a 502 here.
func (controller *ProxyController) Passthrough(c echo.Context) error {
	req := c.Request()
	target := strings.TrimRight(controller.UpstreamURL, "/") + req.URL.RequestURI()

	proxyReq, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Proxy error: " + err.Error()})
	}
	if ct := req.Header.Get(echo.HeaderContentType); ct != "" {
		proxyReq.Header.Set(echo.HeaderContentType, ct)
	} else {
		proxyReq.Header.Set(echo.HeaderContentType, "application/json")
	}

	resp, err := controller.httpClient().Do(proxyReq)
	if err != nil {
		fmt.Println("[Proxy] Upstream error:", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Proxy error: " + err.Error()})
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/json"
	}
	return c.Stream(resp.StatusCode, contentType, resp.Body)
}
