package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tsinghua-lau/transgo/i18n"
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator calls the free Google web translate endpoint. No
// credentials are needed, but the endpoint may be unreachable from some
// networks.
type GoogleTranslator struct {
	// Endpoint overrides the default API URL, for tests.
	Endpoint string

	client *http.Client
}

func NewGoogle() *GoogleTranslator {
	return &GoogleTranslator{
		Endpoint: googleEndpoint,
		client:   makeHTTPClient("", RequestTimeout),
	}
}

func (g *GoogleTranslator) ID() string { return Google }

func (g *GoogleTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &TransportError{Provider: Google, Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", transportError(Google, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &ProviderError{
			Provider: Google,
			Code:     strconv.Itoa(resp.StatusCode),
			Message:  i18n.T("too many requests, try again later"),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Provider: Google,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return "", transportError(Google, err)
	}
	return parseGoogleBody(body)
}

// parseGoogleBody extracts the translation from the undocumented response
// shape: data[0] is a list of segments, each segment an array whose first
// element is the translated chunk. Segments are concatenated so multi-line
// input survives. A flat list of strings is accepted as the legacy shape.
func parseGoogleBody(body []byte) (string, error) {
	var data []any
	if err := json.Unmarshal(body, &data); err != nil || len(data) == 0 {
		return "", &FormatError{Provider: Google}
	}

	segments, ok := data[0].([]any)
	if !ok {
		return "", &FormatError{Provider: Google}
	}

	var b strings.Builder
	for _, seg := range segments {
		switch v := seg.(type) {
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					b.WriteString(s)
				}
			}
		case string:
			b.WriteString(v)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &FormatError{Provider: Google}
	}
	return out, nil
}
