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

const baiduEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

// baiduErrors maps the documented Baidu Fanyi error codes to msgids.
var baiduErrors = map[string]string{
	"54001": "signature error, check your Baidu APPID and key",
	"54003": "request rate too high, try again later",
	"54004": "Baidu account balance is insufficient",
	"58001": "unsupported translation direction",
	"58002": "Baidu translation service is disabled",
	"52001": "Baidu request timed out, try again",
	"52002": "Baidu system error, try again",
	"52003": "unauthorized user, check your Baidu APPID",
}

// BaiduTranslator calls the Baidu Fanyi open API, signing each request
// with MD5(appid + text + salt + key).
type BaiduTranslator struct {
	AppID  string
	AppKey string

	// Endpoint overrides the default API URL, for tests.
	Endpoint string

	client *http.Client
	now    func() time.Time
}

func NewBaidu(appID, appKey string) *BaiduTranslator {
	return &BaiduTranslator{
		AppID:    appID,
		AppKey:   appKey,
		Endpoint: baiduEndpoint,
		client:   makeHTTPClient("", RequestTimeout),
		now:      time.Now,
	}
}

func (b *BaiduTranslator) ID() string { return Baidu }

func (b *BaiduTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if b.AppID == "" || b.AppKey == "" {
		return "", &ConfigError{
			Provider: Baidu,
			Message:  i18n.T("Baidu translation requires an APPID and key, add them in the settings"),
		}
	}

	salt := strconv.FormatInt(b.now().UnixMilli(), 10)
	sign := signing.MD5Hex(b.AppID + text + salt + b.AppKey)

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", from)
	params.Set("to", to)
	params.Set("appid", b.AppID)
	params.Set("salt", salt)
	params.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &TransportError{Provider: Baidu, Err: err}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", transportError(Baidu, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", transportError(Baidu, err)
	}

	// error_code arrives as a string in some responses and a number in
	// others, hence json.Number.
	var body struct {
		TransResult []struct {
			Src string `json:"src"`
			Dst string `json:"dst"`
		} `json:"trans_result"`
		ErrorCode json.Number `json:"error_code"`
		ErrorMsg  string      `json:"error_msg"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &FormatError{Provider: Baidu}
	}

	if len(body.TransResult) > 0 && body.TransResult[0].Dst != "" {
		return body.TransResult[0].Dst, nil
	}

	if code := body.ErrorCode.String(); code != "" && code != "0" {
		if msgid, ok := baiduErrors[code]; ok {
			return "", &ProviderError{Provider: Baidu, Code: code, Message: i18n.T(msgid)}
		}
		return "", &ProviderError{
			Provider: Baidu,
			Code:     code,
			Message:  fmt.Sprintf("%s: %s", i18n.T("Baidu translation error"), code),
		}
	}

	return "", &FormatError{Provider: Baidu}
}
