package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BaiduCredentials is the Baidu Fanyi APPID/key pair.
type BaiduCredentials struct {
	AppID  string `json:"appId"`
	AppKey string `json:"appKey"`
}

// YoudaoCredentials is the Youdao OpenAPI key pair.
type YoudaoCredentials struct {
	AppKey    string `json:"appKey"`
	AppSecret string `json:"appSecret"`
}

// TencentCredentials is the Tencent Cloud API key pair plus region.
type TencentCredentials struct {
	SecretID  string `json:"secretId"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region,omitempty"`
}

// AIConfig is one OpenAI-compatible endpoint configuration. ID is a UUID
// assigned on insert.
type AIConfig struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BaseURL        string `json:"baseUrl"`
	APIKey         string `json:"apiKey"`
	ModelName      string `json:"modelName"`
	PromptTemplate string `json:"promptTemplate,omitempty"`
	Vendor         string `json:"vendor,omitempty"`
}

// Credentials is the persisted shape of auth.json.
type Credentials struct {
	Baidu             BaiduCredentials   `json:"baidu"`
	Youdao            YoudaoCredentials  `json:"youdao"`
	Tencent           TencentCredentials `json:"tencent"`
	AIConfigs         []AIConfig         `json:"aiConfigs"`
	CurrentAIConfigID string             `json:"currentAiConfigId"`
}

var (
	// ErrDuplicateAIConfig rejects an insert whose id already exists.
	ErrDuplicateAIConfig = errors.New("AI configuration id already exists")
	// ErrUnknownAIConfig rejects references to a non-existent id.
	ErrUnknownAIConfig = errors.New("no AI configuration with that id")
)

func (s *Store) loadCredentials() error {
	data, err := os.ReadFile(s.authPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", s.authPath, err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parsing %s: %w", s.authPath, err)
	}

	// Repair rather than reject: a dangling current id is cleared so the
	// invariant holds from the moment the store opens.
	if creds.CurrentAIConfigID != "" && findAIConfig(creds.AIConfigs, creds.CurrentAIConfigID) < 0 {
		creds.CurrentAIConfigID = ""
	}
	s.creds = creds
	return nil
}

func (s *Store) saveCredentialsLocked() error {
	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.authPath), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(s.authPath, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

func findAIConfig(configs []AIConfig, id string) int {
	for i, c := range configs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Credential pair accessors
// ---------------------------------------------------------------------------

func (s *Store) BaiduCredentials() BaiduCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Baidu
}

func (s *Store) SetBaiduCredentials(c BaiduCredentials) error {
	s.mu.Lock()
	s.creds.Baidu = c
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Store) YoudaoCredentials() YoudaoCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Youdao
}

func (s *Store) SetYoudaoCredentials(c YoudaoCredentials) error {
	s.mu.Lock()
	s.creds.Youdao = c
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Store) TencentCredentials() TencentCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Tencent
}

func (s *Store) SetTencentCredentials(c TencentCredentials) error {
	s.mu.Lock()
	s.creds.Tencent = c
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ---------------------------------------------------------------------------
// AI configuration list
// ---------------------------------------------------------------------------

// AIConfigs returns a copy of the AI configuration list.
func (s *Store) AIConfigs() []AIConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AIConfig, len(s.creds.AIConfigs))
	copy(out, s.creds.AIConfigs)
	return out
}

// AddAIConfig inserts cfg, assigning a fresh UUID when cfg.ID is empty.
// The first entry added becomes current automatically.
func (s *Store) AddAIConfig(cfg AIConfig) (AIConfig, error) {
	s.mu.Lock()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if findAIConfig(s.creds.AIConfigs, cfg.ID) >= 0 {
		s.mu.Unlock()
		return AIConfig{}, ErrDuplicateAIConfig
	}
	s.creds.AIConfigs = append(s.creds.AIConfigs, cfg)
	if s.creds.CurrentAIConfigID == "" {
		s.creds.CurrentAIConfigID = cfg.ID
	}
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return AIConfig{}, err
	}
	s.notify()
	return cfg, nil
}

// UpdateAIConfig replaces the entry with cfg.ID.
func (s *Store) UpdateAIConfig(cfg AIConfig) error {
	s.mu.Lock()
	i := findAIConfig(s.creds.AIConfigs, cfg.ID)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownAIConfig
	}
	s.creds.AIConfigs[i] = cfg
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// RemoveAIConfig deletes the entry with the given id. Removing the current
// entry clears the current id.
func (s *Store) RemoveAIConfig(id string) error {
	s.mu.Lock()
	i := findAIConfig(s.creds.AIConfigs, id)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownAIConfig
	}
	s.creds.AIConfigs = append(s.creds.AIConfigs[:i], s.creds.AIConfigs[i+1:]...)
	if s.creds.CurrentAIConfigID == id {
		s.creds.CurrentAIConfigID = ""
	}
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// CurrentAIConfigID returns the selected AI configuration id, or "".
func (s *Store) CurrentAIConfigID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.CurrentAIConfigID
}

// SetCurrentAIConfigID selects an existing entry; the empty string clears
// the selection.
func (s *Store) SetCurrentAIConfigID(id string) error {
	s.mu.Lock()
	if id != "" && findAIConfig(s.creds.AIConfigs, id) < 0 {
		s.mu.Unlock()
		return ErrUnknownAIConfig
	}
	s.creds.CurrentAIConfigID = id
	err := s.saveCredentialsLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// CurrentAIConfig returns the selected AI configuration, if any.
func (s *Store) CurrentAIConfig() (AIConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findAIConfig(s.creds.AIConfigs, s.creds.CurrentAIConfigID)
	if i < 0 {
		return AIConfig{}, false
	}
	return s.creds.AIConfigs[i], true
}
