package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tsinghua-lau/transgo/i18n"
	"github.com/tsinghua-lau/transgo/signing"
)

const youdaoEndpoint = "https://openapi.youdao.com/api"

// youdaoErrors maps the documented Youdao OpenAPI error codes to msgids.
var youdaoErrors = map[string]string{
	"101": "missing required parameter",
	"102": "unsupported language type",
	"103": "text to translate is too long",
	"108": "invalid application ID, check your Youdao AppKey",
	"110": "no valid instance for this application",
	"111": "invalid developer account",
	"202": "signature error, check your Youdao AppKey and secret",
	"401": "Youdao account balance is insufficient",
	"411": "request rate too high, try again later",
}

// youdaoLang maps the internal zh/en codes to Youdao's dialect; Youdao
// spells simplified Chinese "zh-CHS".
func youdaoLang(code string) string {
	if code == "zh" {
		return "zh-CHS"
	}
	return code
}

// YoudaoTranslator calls the Youdao OpenAPI with v3 signing:
// SHA-256(appKey + truncate(input) + salt + curtime + appSecret).
type YoudaoTranslator struct {
	AppKey    string
	AppSecret string

	// Endpoint overrides the default API URL, for tests.
	Endpoint string

	client *http.Client
	now    func() time.Time
}

func NewYoudao(appKey, appSecret string) *YoudaoTranslator {
	return &YoudaoTranslator{
		AppKey:    appKey,
		AppSecret: appSecret,
		Endpoint:  youdaoEndpoint,
		client:    makeHTTPClient("", RequestTimeout),
		now:       time.Now,
	}
}

func (y *YoudaoTranslator) ID() string { return Youdao }

func (y *YoudaoTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if y.AppKey == "" || y.AppSecret == "" {
		return "", &ConfigError{
			Provider: Youdao,
			Message:  i18n.T("Youdao translation requires an AppKey and AppSecret, add them in the settings"),
		}
	}

	now := y.now()
	salt := strconv.FormatInt(now.UnixMilli(), 10)
	curtime := strconv.FormatInt(now.Unix(), 10)
	sign := signing.SHA256Hex(y.AppKey + signing.Truncate(text) + salt + curtime + y.AppSecret)

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", youdaoLang(from))
	params.Set("to", youdaoLang(to))
	params.Set("appKey", y.AppKey)
	params.Set("salt", salt)
	params.Set("sign", sign)
	params.Set("signType", "v3")
	params.Set("curtime", curtime)

	// The API wants POST but reads parameters from the query string.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &TransportError{Provider: Youdao, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := y.client.Do(req)
	if err != nil {
		return "", transportError(Youdao, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", transportError(Youdao, err)
	}

	var body struct {
		ErrorCode   string   `json:"errorCode"`
		Translation []string `json:"translation"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &FormatError{Provider: Youdao}
	}

	if body.ErrorCode == "0" && len(body.Translation) > 0 {
		return body.Translation[0], nil
	}

	if body.ErrorCode != "" && body.ErrorCode != "0" {
		if msgid, ok := youdaoErrors[body.ErrorCode]; ok {
			return "", &ProviderError{Provider: Youdao, Code: body.ErrorCode, Message: i18n.T(msgid)}
		}
		return "", &ProviderError{
			Provider: Youdao,
			Code:     body.ErrorCode,
			Message:  fmt.Sprintf("%s: %s", i18n.T("Youdao translation error"), body.ErrorCode),
		}
	}

	return "", &FormatError{Provider: Youdao}
}
