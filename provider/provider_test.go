package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tsinghua-lau/transgo/signing"
)

var frozenTime = time.Unix(1700000000, 0)

// ---------------------------------------------------------------------------
// Google
// ---------------------------------------------------------------------------

func TestGoogleTranslateConcatenatesSegments(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client": q.Get("client"),
			"sl":     q.Get("sl"),
			"tl":     q.Get("tl"),
			"dt":     q.Get("dt"),
			"q":      q.Get("q"),
		}
		w.Write([]byte(`[[["你好，","hello, ",null,null],["世界","world",null,null]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogle()
	g.Endpoint = srv.URL

	out, err := g.Translate(context.Background(), "hello, world", "en", "zh")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "你好，世界" {
		t.Errorf("got %q, want 你好，世界", out)
	}

	want := map[string]string{"client": "gtx", "sl": "en", "tl": "zh", "dt": "t", "q": "hello, world"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestGoogleTranslateLegacyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[["你好"],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogle()
	g.Endpoint = srv.URL

	out, err := g.Translate(context.Background(), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "你好" {
		t.Errorf("got %q, want 你好", out)
	}
}

func TestGoogleTranslateTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogle()
	g.Endpoint = srv.URL

	_, err := g.Translate(context.Background(), "hello", "en", "zh")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("want ProviderError, got %T: %v", err, err)
	}
	if perr.Code != "429" {
		t.Errorf("code = %q, want 429", perr.Code)
	}
}

func TestGoogleTranslateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"object"}`))
	}))
	defer srv.Close()

	g := NewGoogle()
	g.Endpoint = srv.URL

	_, err := g.Translate(context.Background(), "hello", "en", "zh")
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("want FormatError, got %T: %v", err, err)
	}
}

// ---------------------------------------------------------------------------
// Baidu
// ---------------------------------------------------------------------------

func TestBaiduTranslateSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		wantSign := signing.MD5Hex("test-appid" + q.Get("q") + q.Get("salt") + "test-appkey")
		if q.Get("sign") != wantSign {
			t.Errorf("sign = %q, want %q", q.Get("sign"), wantSign)
		}
		if q.Get("appid") != "test-appid" {
			t.Errorf("appid = %q", q.Get("appid"))
		}
		w.Write([]byte(`{"from":"en","to":"zh","trans_result":[{"src":"hello","dst":"你好"}]}`))
	}))
	defer srv.Close()

	b := NewBaidu("test-appid", "test-appkey")
	b.Endpoint = srv.URL
	b.now = func() time.Time { return frozenTime }

	out, err := b.Translate(context.Background(), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "你好" {
		t.Errorf("got %q, want 你好", out)
	}
}

func TestBaiduTranslateMissingCredentials(t *testing.T) {
	b := NewBaidu("", "")
	_, err := b.Translate(context.Background(), "hello", "en", "zh")
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigError, got %T: %v", err, err)
	}
	if cerr.Provider != Baidu {
		t.Errorf("provider = %q, want %q", cerr.Provider, Baidu)
	}
}

func TestBaiduTranslateErrorTable(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "known code, string error_code",
			body:     `{"error_code":"54001","error_msg":"Invalid Sign"}`,
			wantCode: "54001",
			wantMsg:  "signature error, check your Baidu APPID and key",
		},
		{
			name:     "known code, numeric error_code",
			body:     `{"error_code":54003,"error_msg":"Invalid Access Limit"}`,
			wantCode: "54003",
			wantMsg:  "request rate too high, try again later",
		},
		{
			name:     "unknown code falls back to generic message",
			body:     `{"error_code":"99999"}`,
			wantCode: "99999",
			wantMsg:  "Baidu translation error: 99999",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			b := NewBaidu("id", "key")
			b.Endpoint = srv.URL
			b.now = func() time.Time { return frozenTime }

			_, err := b.Translate(context.Background(), "hello", "en", "zh")
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("want ProviderError, got %T: %v", err, err)
			}
			if perr.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", perr.Code, tc.wantCode)
			}
			if perr.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", perr.Message, tc.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Youdao
// ---------------------------------------------------------------------------

func TestYoudaoTranslateSignsAndMapsLanguages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		q := r.URL.Query()
		if q.Get("from") != "zh-CHS" || q.Get("to") != "en" {
			t.Errorf("language pair = %s->%s, want zh-CHS->en", q.Get("from"), q.Get("to"))
		}
		if q.Get("signType") != "v3" {
			t.Errorf("signType = %q, want v3", q.Get("signType"))
		}
		wantSign := signing.SHA256Hex("test-app-key" + signing.Truncate(q.Get("q")) +
			q.Get("salt") + q.Get("curtime") + "test-app-secret")
		if q.Get("sign") != wantSign {
			t.Errorf("sign = %q, want %q", q.Get("sign"), wantSign)
		}
		w.Write([]byte(`{"errorCode":"0","translation":["hello"]}`))
	}))
	defer srv.Close()

	y := NewYoudao("test-app-key", "test-app-secret")
	y.Endpoint = srv.URL
	y.now = func() time.Time { return frozenTime }

	out, err := y.Translate(context.Background(), "你好", "zh", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "hello" {
		t.Errorf("got %q, want hello", out)
	}
}

func TestYoudaoTranslateErrorTable(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "known code",
			body:     `{"errorCode":"411"}`,
			wantCode: "411",
			wantMsg:  "request rate too high, try again later",
		},
		{
			name:     "unknown code falls back to generic message",
			body:     `{"errorCode":"9999"}`,
			wantCode: "9999",
			wantMsg:  "Youdao translation error: 9999",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			y := NewYoudao("key", "secret")
			y.Endpoint = srv.URL
			y.now = func() time.Time { return frozenTime }

			_, err := y.Translate(context.Background(), "hello", "en", "zh")
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("want ProviderError, got %T: %v", err, err)
			}
			if perr.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", perr.Code, tc.wantCode)
			}
			if perr.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", perr.Message, tc.wantMsg)
			}
		})
	}
}

func TestYoudaoTranslateMissingCredentials(t *testing.T) {
	y := NewYoudao("key", "")
	_, err := y.Translate(context.Background(), "hello", "en", "zh")
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigError, got %T: %v", err, err)
	}
}

// ---------------------------------------------------------------------------
// Tencent
// ---------------------------------------------------------------------------

func TestTC3AuthorizationFixture(t *testing.T) {
	payload := []byte(`{"SourceText":"hello","Source":"en","Target":"zh","ProjectId":0}`)
	got := tc3Authorization("AKIDtest", "test-secret-key", "tmt.tencentcloudapi.com", 1700000000, payload)
	want := "TC3-HMAC-SHA256 Credential=AKIDtest/2023-11-14/tmt/tc3_request, " +
		"SignedHeaders=content-type;host;x-tc-action;x-tc-timestamp;x-tc-version, " +
		"Signature=3365e56b03dd8e7d98323161e95613d5bdd40deee3eb345829c6ac907e9a9874"
	if got != want {
		t.Errorf("authorization mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestTencentTranslateSendsSignedHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-TC-Action") != "TextTranslate" {
			t.Errorf("X-TC-Action = %q", r.Header.Get("X-TC-Action"))
		}
		if r.Header.Get("X-TC-Version") != "2018-03-21" {
			t.Errorf("X-TC-Version = %q", r.Header.Get("X-TC-Version"))
		}
		if r.Header.Get("X-TC-Region") != "ap-guangzhou" {
			t.Errorf("X-TC-Region = %q", r.Header.Get("X-TC-Region"))
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "TC3-HMAC-SHA256 Credential=AKIDtest/2023-11-14/tmt/tc3_request, ") {
			t.Errorf("Authorization = %q", auth)
		}
		w.Write([]byte(`{"Response":{"TargetText":"你好","Source":"en","Target":"zh","RequestId":"x"}}`))
	}))
	defer srv.Close()

	tr := NewTencent("AKIDtest", "test-secret-key", "")
	tr.Endpoint = srv.URL
	tr.now = func() time.Time { return frozenTime }

	out, err := tr.Translate(context.Background(), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "你好" {
		t.Errorf("got %q, want 你好", out)
	}
}

func TestTencentTranslateErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":{"Error":{"Code":"AuthFailure.SignatureFailure","Message":"sign mismatch"},"RequestId":"x"}}`))
	}))
	defer srv.Close()

	tr := NewTencent("id", "key", "")
	tr.Endpoint = srv.URL
	tr.now = func() time.Time { return frozenTime }

	_, err := tr.Translate(context.Background(), "hello", "en", "zh")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("want ProviderError, got %T: %v", err, err)
	}
	if perr.Code != "AuthFailure.SignatureFailure" {
		t.Errorf("code = %q", perr.Code)
	}
	if !strings.Contains(perr.Message, "sign mismatch") {
		t.Errorf("message %q does not carry the upstream text", perr.Message)
	}
}

// ---------------------------------------------------------------------------
// AI (OpenAI-compatible)
// ---------------------------------------------------------------------------

func TestAITranslateChatCompletions(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = readBody(r.Body)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" 你好 "}}]}`))
	}))
	defer srv.Close()

	a := NewAI(srv.URL+"/v1", "sk-test", "gpt-4o-mini", "")

	out, err := a.Translate(context.Background(), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "你好" {
		t.Errorf("got %q, want trimmed 你好", out)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(string(gotBody), `"model":"gpt-4o-mini"`) {
		t.Errorf("body missing model: %s", gotBody)
	}
	if !strings.Contains(string(gotBody), "hello") {
		t.Errorf("body missing input text: %s", gotBody)
	}
}

func TestAITranslateKeepsExplicitCompletionsPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	a := NewAI(srv.URL+"/v1/chat/completions", "sk-test", "m", "")
	if _, err := a.Translate(context.Background(), "hello", "en", "zh"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want suffix untouched", gotPath)
	}
}

func TestAITranslatePromptTemplate(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = readBody(r.Body)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	a := NewAI(srv.URL, "sk-test", "m", "Translate precisely: {text}")
	if _, err := a.Translate(context.Background(), "hover cache", "en", "zh"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(string(gotBody), "Translate precisely: hover cache") {
		t.Errorf("template not applied: %s", gotBody)
	}
}

func TestAITranslateErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	a := NewAI(srv.URL, "bad", "m", "")
	_, err := a.Translate(context.Background(), "hello", "en", "zh")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("want ProviderError, got %T: %v", err, err)
	}
	if !strings.Contains(perr.Message, "invalid api key") {
		t.Errorf("message = %q", perr.Message)
	}
}

func TestAITranslateMissingConfig(t *testing.T) {
	a := NewAI("", "", "", "")
	_, err := a.Translate(context.Background(), "hello", "en", "zh")
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigError, got %T: %v", err, err)
	}
}

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

func TestRateLimitErrorRoundsUp(t *testing.T) {
	e := &RateLimitError{RetryIn: 1500 * time.Millisecond}
	if got := e.Error(); got != "rate limited, retry in 2 seconds" {
		t.Errorf("Error() = %q", got)
	}
	e = &RateLimitError{RetryIn: 200 * time.Millisecond}
	if got := e.Error(); got != "rate limited, retry in 1 seconds" {
		t.Errorf("sub-second retry: %q", got)
	}
}

func TestTransportErrorTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewGoogle()
	g.Endpoint = srv.URL
	g.client.Timeout = 20 * time.Millisecond

	_, err := g.Translate(context.Background(), "hello", "en", "zh")
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("want TransportError, got %T: %v", err, err)
	}
	if !terr.Timeout {
		t.Errorf("Timeout = false, want true: %v", terr.Err)
	}
}
