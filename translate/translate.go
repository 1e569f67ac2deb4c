// Package translate is the translation facade: it owns provider selection,
// normalizes input before dispatch, builds the adapter for the active
// provider from stored credentials, and adds provider-aware context to
// failures. All state lives in the configuration store; each call reads a
// fresh credentials snapshot, so an in-flight call is unaffected by a
// concurrent credential update.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsinghua-lau/transgo/config"
	"github.com/tsinghua-lau/transgo/i18n"
	"github.com/tsinghua-lau/transgo/provider"
	"github.com/tsinghua-lau/transgo/textutil"
)

// Result is one completed translation. OriginalText is the caller's input
// before identifier normalization.
type Result struct {
	OriginalText   string
	TranslatedText string
	SourceLang     string
	TargetLang     string
}

// Options tunes facade behavior.
type Options struct {
	// GoogleNetworkHint wraps Google failures with a hint that network
	// restrictions may be the cause. The hint reflects deployments where
	// the public Google endpoint is blocked; switch it off where that
	// cannot happen.
	GoogleNetworkHint bool

	// TranslatorFactory overrides adapter construction. Nil uses the
	// built-in providers.
	TranslatorFactory func(id string) provider.Translator
}

// DefaultOptions enables the Google network hint, matching the behavior
// users expect out of the box.
func DefaultOptions() Options {
	return Options{GoogleNetworkHint: true}
}

// Service dispatches translations to the active provider.
type Service struct {
	store *config.Store
	opts  Options

	// translatorFor is replaced in tests to avoid the network.
	translatorFor func(id string) provider.Translator
}

func NewService(store *config.Store, opts Options) *Service {
	s := &Service{store: store, opts: opts}
	s.translatorFor = s.buildTranslator
	if opts.TranslatorFactory != nil {
		s.translatorFor = opts.TranslatorFactory
	}
	return s
}

// buildTranslator constructs the adapter for id from the current
// credentials snapshot. Unrecognized ids fall back to Google.
func (s *Service) buildTranslator(id string) provider.Translator {
	switch id {
	case provider.Baidu:
		c := s.store.BaiduCredentials()
		return provider.NewBaidu(c.AppID, c.AppKey)
	case provider.Youdao:
		c := s.store.YoudaoCredentials()
		return provider.NewYoudao(c.AppKey, c.AppSecret)
	case provider.Tencent:
		c := s.store.TencentCredentials()
		return provider.NewTencent(c.SecretID, c.SecretKey, c.Region)
	case provider.AI:
		cfg, _ := s.store.CurrentAIConfig()
		return provider.NewAI(cfg.BaseURL, cfg.APIKey, cfg.ModelName, cfg.PromptTemplate)
	default:
		return provider.NewGoogle()
	}
}

// Translate runs the full pipeline: reject empty input, detect the
// language pair from the script, normalize identifier-style English input,
// dispatch to the active provider. Chinese input is sent verbatim.
func (s *Service) Translate(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, provider.ErrEmptyInput
	}

	source, target := textutil.DetectLanguagePair(text)
	sendText := text
	if source == "en" {
		sendText = textutil.NormalizeIdentifier(text)
	}

	id := s.store.Provider()
	if !provider.Known(id) {
		id = provider.Google
	}

	out, err := s.translatorFor(id).Translate(ctx, sendText, source, target)
	if err != nil {
		if id == provider.Google && s.opts.GoogleNetworkHint {
			return nil, fmt.Errorf("%s: %w",
				i18n.T("Google translation failed, the service may be unreachable from your network, consider switching providers"), err)
		}
		return nil, err
	}

	return &Result{
		OriginalText:   text,
		TranslatedText: out,
		SourceLang:     source,
		TargetLang:     target,
	}, nil
}

// ---------------------------------------------------------------------------
// Configuration pass-throughs
// ---------------------------------------------------------------------------

// Provider returns the active provider id.
func (s *Service) Provider() string { return s.store.Provider() }

// SetProvider switches the active provider and persists immediately.
func (s *Service) SetProvider(id string) error { return s.store.SetProvider(id) }

func (s *Service) BaiduCredentials() config.BaiduCredentials { return s.store.BaiduCredentials() }
func (s *Service) SetBaiduCredentials(c config.BaiduCredentials) error {
	return s.store.SetBaiduCredentials(c)
}

func (s *Service) YoudaoCredentials() config.YoudaoCredentials { return s.store.YoudaoCredentials() }
func (s *Service) SetYoudaoCredentials(c config.YoudaoCredentials) error {
	return s.store.SetYoudaoCredentials(c)
}

func (s *Service) TencentCredentials() config.TencentCredentials {
	return s.store.TencentCredentials()
}
func (s *Service) SetTencentCredentials(c config.TencentCredentials) error {
	return s.store.SetTencentCredentials(c)
}

func (s *Service) AIConfigs() []config.AIConfig { return s.store.AIConfigs() }
func (s *Service) AddAIConfig(cfg config.AIConfig) (config.AIConfig, error) {
	return s.store.AddAIConfig(cfg)
}
func (s *Service) RemoveAIConfig(id string) error { return s.store.RemoveAIConfig(id) }
func (s *Service) CurrentAIConfigID() string      { return s.store.CurrentAIConfigID() }
func (s *Service) SetCurrentAIConfigID(id string) error {
	return s.store.SetCurrentAIConfigID(id)
}

// ---------------------------------------------------------------------------
// Provider capability checks
// ---------------------------------------------------------------------------

// IsConfigured reports whether the provider has everything it needs to
// translate. Google needs no credentials and is always configured.
func (s *Service) IsConfigured(id string) bool {
	switch id {
	case provider.Google:
		return true
	case provider.Baidu:
		c := s.store.BaiduCredentials()
		return c.AppID != "" && c.AppKey != ""
	case provider.Youdao:
		c := s.store.YoudaoCredentials()
		return c.AppKey != "" && c.AppSecret != ""
	case provider.Tencent:
		c := s.store.TencentCredentials()
		return c.SecretID != "" && c.SecretKey != ""
	case provider.AI:
		cfg, ok := s.store.CurrentAIConfig()
		return ok && cfg.BaseURL != "" && cfg.APIKey != "" && cfg.ModelName != ""
	}
	return false
}

// SupportsHover reports whether the provider may serve hover translations.
// The AI provider is excluded: its latency and cost do not suit ambient
// hover triggers.
func (s *Service) SupportsHover(id string) bool {
	return provider.Known(id) && id != provider.AI
}
