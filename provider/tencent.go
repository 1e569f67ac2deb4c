package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tsinghua-lau/transgo/i18n"
	"github.com/tsinghua-lau/transgo/signing"
)

const (
	tencentEndpoint = "https://tmt.tencentcloudapi.com"
	tencentAction   = "TextTranslate"
	tencentVersion  = "2018-03-21"
	tencentService  = "tmt"

	// DefaultTencentRegion is used when the credentials carry no region.
	DefaultTencentRegion = "ap-guangzhou"
)

// TencentTranslator calls the Tencent Machine Translation (TMT) API with
// TC3-HMAC-SHA256 request signing.
type TencentTranslator struct {
	SecretID  string
	SecretKey string
	Region    string

	// Endpoint overrides the default API URL, for tests. The Host header
	// derived from it participates in the signature.
	Endpoint string

	client *http.Client
	now    func() time.Time
}

func NewTencent(secretID, secretKey, region string) *TencentTranslator {
	if region == "" {
		region = DefaultTencentRegion
	}
	return &TencentTranslator{
		SecretID:  secretID,
		SecretKey: secretKey,
		Region:    region,
		Endpoint:  tencentEndpoint,
		client:    makeHTTPClient("", RequestTimeout),
		now:       time.Now,
	}
}

func (t *TencentTranslator) ID() string { return Tencent }

func (t *TencentTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if t.SecretID == "" || t.SecretKey == "" {
		return "", &ConfigError{
			Provider: Tencent,
			Message:  i18n.T("Tencent translation requires a SecretId and SecretKey, add them in the settings"),
		}
	}

	payload, err := json.Marshal(struct {
		SourceText string `json:"SourceText"`
		Source     string `json:"Source"`
		Target     string `json:"Target"`
		ProjectId  int    `json:"ProjectId"`
	}{
		SourceText: text,
		Source:     from,
		Target:     to,
		ProjectId:  0,
	})
	if err != nil {
		return "", &TransportError{Provider: Tencent, Err: err}
	}

	parsed, err := url.Parse(t.Endpoint)
	if err != nil {
		return "", &TransportError{Provider: Tencent, Err: err}
	}

	ts := t.now().Unix()
	auth := tc3Authorization(t.SecretID, t.SecretKey, parsed.Host, ts, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Provider: Tencent, Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", auth)
	req.Header.Set("X-TC-Action", tencentAction)
	req.Header.Set("X-TC-Version", tencentVersion)
	req.Header.Set("X-TC-Timestamp", strconv.FormatInt(ts, 10))
	req.Header.Set("X-TC-Region", t.Region)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", transportError(Tencent, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", transportError(Tencent, err)
	}

	// Errors come back wrapped in the same Response envelope as results,
	// usually with HTTP 200.
	var body struct {
		Response struct {
			TargetText string `json:"TargetText"`
			Error      *struct {
				Code    string `json:"Code"`
				Message string `json:"Message"`
			} `json:"Error"`
		} `json:"Response"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &FormatError{Provider: Tencent}
	}

	if e := body.Response.Error; e != nil {
		return "", &ProviderError{
			Provider: Tencent,
			Code:     e.Code,
			Message:  fmt.Sprintf("%s (%s): %s", i18n.T("Tencent translation error"), e.Code, e.Message),
		}
	}
	if body.Response.TargetText != "" {
		return body.Response.TargetText, nil
	}

	return "", &FormatError{Provider: Tencent}
}

// tc3Authorization computes the TC3-HMAC-SHA256 Authorization header for a
// TMT TextTranslate call. The derivation chain follows the Tencent Cloud
// signature v3 scheme: canonical request, string-to-sign, then a signing
// key derived as HMAC("TC3"+secret, date) -> service -> "tc3_request".
func tc3Authorization(secretID, secretKey, host string, ts int64, payload []byte) string {
	date := time.Unix(ts, 0).UTC().Format("2006-01-02")

	canonicalHeaders := "content-type:application/json; charset=utf-8\n" +
		"host:" + host + "\n" +
		"x-tc-action:" + strings.ToLower(tencentAction) + "\n" +
		"x-tc-timestamp:" + strconv.FormatInt(ts, 10) + "\n" +
		"x-tc-version:" + tencentVersion + "\n"
	signedHeaders := "content-type;host;x-tc-action;x-tc-timestamp;x-tc-version"

	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		"/",
		"",
		canonicalHeaders,
		signedHeaders,
		signing.HashSHA256Hex(payload),
	}, "\n")

	scope := date + "/" + tencentService + "/tc3_request"
	stringToSign := strings.Join([]string{
		"TC3-HMAC-SHA256",
		strconv.FormatInt(ts, 10),
		scope,
		signing.SHA256Hex(canonicalRequest),
	}, "\n")

	key := signing.HMACSHA256([]byte("TC3"+secretKey), date)
	key = signing.HMACSHA256(key, tencentService)
	key = signing.HMACSHA256(key, "tc3_request")
	sig := signing.HMACSHA256Hex(key, stringToSign)

	return fmt.Sprintf("TC3-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		secretID, scope, signedHeaders, sig)
}
