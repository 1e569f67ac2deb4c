// Package panel implements the translate-panel message protocol: typed
// request/response pairs over a generic message channel, served to UIs
// over WebSocket. Every panel capability — translation, speech, casing
// conversion, configuration — is a message pair, so any frontend that can
// speak JSON frames can host the panel.
package panel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tsinghua-lau/transgo/config"
	"github.com/tsinghua-lau/transgo/textutil"
	"github.com/tsinghua-lau/transgo/translate"
	"github.com/tsinghua-lau/transgo/tts"
)

// Message is one protocol frame. Payload shape depends on Type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request message types.
const (
	MsgTranslate         = "translate"
	MsgSpeak             = "speak"
	MsgStopSpeak         = "stopSpeak"
	MsgCheckTTSAvailable = "checkTTSAvailable"
	MsgCasing            = "casing"
	MsgGetConfig         = "getConfig"
	MsgSetProvider       = "setProvider"
	MsgSetBaiduCreds     = "setBaiduCredentials"
	MsgSetYoudaoCreds    = "setYoudaoCredentials"
	MsgSetTencentCreds   = "setTencentCredentials"
	MsgAddAIConfig       = "addAiConfig"
	MsgRemoveAIConfig    = "removeAiConfig"
	MsgSetCurrentAI      = "setCurrentAiConfig"
	MsgSetHoverEnabled   = "setHoverTranslation"
	MsgSetHoverDelay     = "setHoverDelay"
	MsgSetCasingButtons  = "setShowCasingButtons"
	MsgSaveUIState       = "saveUiState"
	MsgSaveCasingResult  = "saveCasingResult"
	MsgWebviewReady      = "webviewReady"
)

// Response message types.
const (
	MsgTranslationResult = "translationResult"
	MsgTranslationError  = "translationError"
	MsgSpeakComplete     = "speakComplete"
	MsgSpeakError        = "speakError"
	MsgSpeakStopped      = "speakStopped"
	MsgTTSAvailable      = "ttsAvailable"
	MsgCasingResult      = "casingResult"
	MsgConfig            = "config"
	MsgUIState           = "uiState"
	MsgError             = "error"
)

// Handler executes panel messages against the translation, speech, and
// configuration services.
type Handler struct {
	svc   *translate.Service
	store *config.Store
	tts   *tts.Service
}

func NewHandler(svc *translate.Service, store *config.Store, speech *tts.Service) *Handler {
	return &Handler{svc: svc, store: store, tts: speech}
}

func mustMessage(msgType string, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	return Message{Type: msgType, Payload: data}
}

func errorMessage(msgType string, err error) Message {
	return mustMessage(msgType, map[string]string{"error": err.Error()})
}

// configSnapshot is the payload of MsgConfig: everything the panel needs
// to render its settings surface.
type configSnapshot struct {
	Provider          string            `json:"provider"`
	HoverTranslation  bool              `json:"hoverTranslation"`
	HoverDelayMS      int               `json:"hoverDelayMs"`
	ShowCasingButtons bool              `json:"showCasingButtons"`
	AIConfigs         []config.AIConfig `json:"aiConfigs"`
	CurrentAIConfigID string            `json:"currentAiConfigId"`
}

func (h *Handler) snapshot() configSnapshot {
	return configSnapshot{
		Provider:          h.store.Provider(),
		HoverTranslation:  h.store.HoverTranslation(),
		HoverDelayMS:      int(h.store.HoverDelay() / time.Millisecond),
		ShowCasingButtons: h.store.ShowCasingButtons(),
		AIConfigs:         h.store.AIConfigs(),
		CurrentAIConfigID: h.store.CurrentAIConfigID(),
	}
}

// Handle executes one message and returns the response frames, in order.
// Unknown message types yield a single MsgError frame.
func (h *Handler) Handle(ctx context.Context, msg Message) []Message {
	switch msg.Type {
	case MsgTranslate:
		return h.handleTranslate(ctx, msg.Payload)
	case MsgSpeak:
		return h.handleSpeak(ctx, msg.Payload)
	case MsgStopSpeak:
		h.tts.Stop()
		return []Message{mustMessage(MsgSpeakStopped, map[string]any{})}
	case MsgCheckTTSAvailable:
		return []Message{mustMessage(MsgTTSAvailable, map[string]bool{"available": h.tts.IsAvailable()})}
	case MsgCasing:
		return h.handleCasing(msg.Payload)
	case MsgGetConfig:
		return []Message{mustMessage(MsgConfig, h.snapshot())}
	case MsgSetProvider:
		return h.handleSetProvider(msg.Payload)
	case MsgSetBaiduCreds:
		return h.setCredentials(msg.Payload, func(p json.RawMessage) error {
			var c config.BaiduCredentials
			if err := json.Unmarshal(p, &c); err != nil {
				return err
			}
			return h.store.SetBaiduCredentials(c)
		})
	case MsgSetYoudaoCreds:
		return h.setCredentials(msg.Payload, func(p json.RawMessage) error {
			var c config.YoudaoCredentials
			if err := json.Unmarshal(p, &c); err != nil {
				return err
			}
			return h.store.SetYoudaoCredentials(c)
		})
	case MsgSetTencentCreds:
		return h.setCredentials(msg.Payload, func(p json.RawMessage) error {
			var c config.TencentCredentials
			if err := json.Unmarshal(p, &c); err != nil {
				return err
			}
			return h.store.SetTencentCredentials(c)
		})
	case MsgAddAIConfig:
		return h.handleAddAIConfig(msg.Payload)
	case MsgRemoveAIConfig:
		return h.handleRemoveAIConfig(msg.Payload)
	case MsgSetCurrentAI:
		return h.handleSetCurrentAI(msg.Payload)
	case MsgSetHoverEnabled:
		return h.handleSetHoverEnabled(msg.Payload)
	case MsgSetHoverDelay:
		return h.handleSetHoverDelay(msg.Payload)
	case MsgSetCasingButtons:
		return h.handleSetCasingButtons(msg.Payload)
	case MsgSaveUIState:
		return h.handleSaveUIState(msg.Payload)
	case MsgSaveCasingResult:
		return h.handleSaveCasingResult(msg.Payload)
	case MsgWebviewReady:
		// Full restoration push: settings snapshot, then saved UI state.
		return []Message{
			mustMessage(MsgConfig, h.snapshot()),
			mustMessage(MsgUIState, h.store.UIState()),
		}
	}
	return []Message{mustMessage(MsgError, map[string]string{"error": "unknown message type: " + msg.Type})}
}

func (h *Handler) handleTranslate(ctx context.Context, payload json.RawMessage) []Message {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgTranslationError, err)}
	}
	res, err := h.svc.Translate(ctx, req.Text)
	if err != nil {
		return []Message{errorMessage(MsgTranslationError, err)}
	}
	return []Message{mustMessage(MsgTranslationResult, map[string]any{
		"result": map[string]string{
			"originalText":   res.OriginalText,
			"translatedText": res.TranslatedText,
			"sourceLang":     res.SourceLang,
			"targetLang":     res.TargetLang,
		},
	})}
}

func (h *Handler) handleSpeak(ctx context.Context, payload json.RawMessage) []Message {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Voice    string `json:"voice"`
		Rate     int    `json:"rate"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgSpeakError, err)}
	}
	if err := h.tts.Speak(ctx, req.Text, req.Language, tts.Options{Voice: req.Voice, Rate: req.Rate}); err != nil {
		return []Message{errorMessage(MsgSpeakError, err)}
	}
	return []Message{mustMessage(MsgSpeakComplete, map[string]any{})}
}

func (h *Handler) handleCasing(payload json.RawMessage) []Message {
	var req struct {
		Text  string `json:"text"`
		Style string `json:"style"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}

	var out string
	switch req.Style {
	case "upperCamel":
		out = textutil.ToUpperCamelCase(req.Text)
	case "lowerCamel":
		out = textutil.ToLowerCamelCase(req.Text)
	case "underscore":
		out = textutil.ToUnderscoreCase(req.Text)
	case "kebab":
		out = textutil.ToKebabCase(req.Text)
	default:
		return []Message{mustMessage(MsgError, map[string]string{"error": "unknown casing style: " + req.Style})}
	}
	return []Message{mustMessage(MsgCasingResult, map[string]string{"result": out})}
}

func (h *Handler) handleSetProvider(payload json.RawMessage) []Message {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetProvider(req.Provider); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) setCredentials(payload json.RawMessage, apply func(json.RawMessage) error) []Message {
	if err := apply(payload); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleAddAIConfig(payload json.RawMessage) []Message {
	var cfg config.AIConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if _, err := h.store.AddAIConfig(cfg); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleRemoveAIConfig(payload json.RawMessage) []Message {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.RemoveAIConfig(req.ID); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleSetCurrentAI(payload json.RawMessage) []Message {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetCurrentAIConfigID(req.ID); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleSetHoverEnabled(payload json.RawMessage) []Message {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetHoverTranslation(req.Enabled); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleSetHoverDelay(payload json.RawMessage) []Message {
	var req struct {
		DelayMS int `json:"delayMs"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetHoverDelayMS(req.DelayMS); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleSetCasingButtons(payload json.RawMessage) []Message {
	var req struct {
		Show bool `json:"show"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetShowCasingButtons(req.Show); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgConfig, h.snapshot())}
}

func (h *Handler) handleSaveUIState(payload json.RawMessage) []Message {
	var state config.UIState
	if err := json.Unmarshal(payload, &state); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	if err := h.store.SetUIState(state); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgUIState, h.store.UIState())}
}

func (h *Handler) handleSaveCasingResult(payload json.RawMessage) []Message {
	var req struct {
		CasingResult string `json:"casingResult"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	state := h.store.UIState()
	state.CasingResult = req.CasingResult
	if err := h.store.SetUIState(state); err != nil {
		return []Message{errorMessage(MsgError, err)}
	}
	return []Message{mustMessage(MsgUIState, h.store.UIState())}
}
