// Package provider implements the translation backend adapters: Google
// web translate, Baidu Fanyi, Youdao OpenAPI, Tencent TMT, and
// OpenAI-compatible AI endpoints. Each adapter owns its request signing,
// wire format, and error-table mapping; callers see only the Translator
// interface and the shared error taxonomy in errors.go.
package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Provider identifiers, stable across config files and the wire protocol.
const (
	Google  = "google"
	Baidu   = "baidu"
	Youdao  = "youdao"
	Tencent = "tencent"
	AI      = "ai"
)

// All lists the known provider identifiers in display order.
var All = []string{Google, Baidu, Youdao, Tencent, AI}

// Known reports whether id names a supported provider.
func Known(id string) bool {
	for _, p := range All {
		if p == id {
			return true
		}
	}
	return false
}

// RequestTimeout bounds every translation HTTP exchange.
const RequestTimeout = 10 * time.Second

// Translator is the single-operation contract every adapter satisfies.
// from and to are "zh"/"en" language codes; adapters map them to their
// provider's dialect internally.
type Translator interface {
	ID() string
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// makeHTTPClient builds the shared client for provider calls. An explicit
// proxy URL wins over HTTP_PROXY/HTTPS_PROXY from the environment.
func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// readBody drains a response body with a sanity cap.
func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, 4<<20))
}
