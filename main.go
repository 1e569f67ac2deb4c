// transgo — multi-provider translation tool with hover cache, TTS, and
// identifier-casing conversion.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsinghua-lau/transgo/config"
	"github.com/tsinghua-lau/transgo/i18n"
	"github.com/tsinghua-lau/transgo/panel"
	"github.com/tsinghua-lau/transgo/provider"
	"github.com/tsinghua-lau/transgo/textutil"
	"github.com/tsinghua-lau/transgo/translate"
	"github.com/tsinghua-lau/transgo/tts"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// openStore resolves the XDG configuration paths and opens the store.
func openStore() (*config.Store, error) {
	store, err := config.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	return store, nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transgo",
		Short: "Multi-provider translation with TTS and casing tools",
		Long: `transgo — multi-provider translation between Chinese and English.

Translation direction is detected from the input script: Chinese text
translates to English, everything else to Chinese. English identifier-style
input (camelCase, snake_case, kebab-case) is split into a phrase before
translation.

Commands:
  translate   Translate text with the active provider
  speak       Read text aloud with the platform synthesizer
  casing      Convert a phrase between identifier casing styles
  config      Show and change provider settings and credentials
  panel       Serve the translate panel over WebSocket

Providers:
  google    Public web endpoint, no credentials needed
  baidu     Baidu Fanyi — APPID + key
  youdao    Youdao OpenAPI — AppKey + AppSecret
  tencent   Tencent TMT — SecretId + SecretKey
  ai        Any OpenAI-compatible chat endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init("")
		},
	}

	root.AddCommand(
		newTranslateCmd(),
		newSpeakCmd(),
		newCasingCmd(),
		newConfigCmd(),
		newPanelCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transgo version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var providerID string

	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text with the active provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if providerID != "" {
				if !provider.Known(providerID) {
					return fmt.Errorf("unknown provider %q (choose from %s)",
						providerID, strings.Join(provider.All, ", "))
				}
				if err := store.SetProvider(providerID); err != nil {
					return err
				}
			}

			svc := translate.NewService(store, translate.DefaultOptions())
			active := store.Provider()
			if !svc.IsConfigured(active) {
				logWarning("provider %s is not fully configured", active)
			}

			text := strings.Join(args, " ")
			res, err := svc.Translate(cmd.Context(), text)
			if err != nil {
				return err
			}

			logInfo("%s -> %s via %s", res.SourceLang, res.TargetLang, active)
			fmt.Println(res.TranslatedText)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "Provider to use (persisted as the active provider)")
	return cmd
}

// ---------------------------------------------------------------------------
// speak
// ---------------------------------------------------------------------------

func newSpeakCmd() *cobra.Command {
	var lang, voice string
	var rate int

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Read text aloud with the platform synthesizer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speech := tts.NewService()
			if !speech.IsAvailable() {
				return fmt.Errorf("%s", i18n.T("text to speech is not available on this system"))
			}

			text := strings.Join(args, " ")
			if lang == "" {
				lang, _ = textutil.DetectLanguagePair(text)
			}
			return speech.Speak(cmd.Context(), text, lang, tts.Options{Voice: voice, Rate: rate})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language (zh or en, detected from the text when empty)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice name (platform default when empty)")
	cmd.Flags().IntVar(&rate, "rate", 0, "Speech rate in words per minute (0 = platform default)")
	return cmd
}

// ---------------------------------------------------------------------------
// casing
// ---------------------------------------------------------------------------

func newCasingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "casing <style> <text>",
		Short: "Convert a phrase between identifier casing styles",
		Long: `Convert a phrase to an identifier casing style.

Styles:
  upper-camel   hello world -> HelloWorld
  lower-camel   hello world -> helloWorld
  underscore    hello world -> hello_world
  kebab         hello world -> hello-world
  all           print every style`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			style := args[0]
			text := strings.Join(args[1:], " ")

			switch style {
			case "upper-camel":
				fmt.Println(textutil.ToUpperCamelCase(text))
			case "lower-camel":
				fmt.Println(textutil.ToLowerCamelCase(text))
			case "underscore":
				fmt.Println(textutil.ToUnderscoreCase(text))
			case "kebab":
				fmt.Println(textutil.ToKebabCase(text))
			case "all":
				fmt.Printf("upper-camel:  %s\n", textutil.ToUpperCamelCase(text))
				fmt.Printf("lower-camel:  %s\n", textutil.ToLowerCamelCase(text))
				fmt.Printf("underscore:   %s\n", textutil.ToUnderscoreCase(text))
				fmt.Printf("kebab:        %s\n", textutil.ToKebabCase(text))
			default:
				return fmt.Errorf("unknown casing style %q", style)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change provider settings and credentials",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigProviderCmd(),
		newConfigCredentialsCmd(),
		newConfigAICmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			svc := translate.NewService(store, translate.DefaultOptions())

			fmt.Printf("Settings file:    %s\n", store.SettingsPath())
			fmt.Printf("Credential file:  %s\n", store.AuthPath())
			fmt.Printf("Active provider:  %s\n", store.Provider())
			fmt.Printf("Hover translate:  %v (delay %s)\n", store.HoverTranslation(), store.HoverDelay())
			fmt.Printf("Casing buttons:   %v\n", store.ShowCasingButtons())
			fmt.Println()
			for _, id := range provider.All {
				state := "not configured"
				if svc.IsConfigured(id) {
					state = "configured"
				}
				marker := " "
				if id == store.Provider() {
					marker = "*"
				}
				fmt.Printf("%s %-8s %s\n", marker, id, state)
			}
			return nil
		},
	}
}

func newConfigProviderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provider <id>",
		Short: "Set the active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !provider.Known(id) {
				return fmt.Errorf("unknown provider %q (choose from %s)", id, strings.Join(provider.All, ", "))
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.SetProvider(id); err != nil {
				return err
			}
			logSuccess("active provider set to %s", id)
			return nil
		},
	}
}

func newConfigCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Store provider credentials",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "baidu <appid> <appkey>",
			Short: "Store Baidu Fanyi credentials",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.SetBaiduCredentials(config.BaiduCredentials{AppID: args[0], AppKey: args[1]}); err != nil {
					return err
				}
				logSuccess("Baidu credentials saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "youdao <appkey> <appsecret>",
			Short: "Store Youdao OpenAPI credentials",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.SetYoudaoCredentials(config.YoudaoCredentials{AppKey: args[0], AppSecret: args[1]}); err != nil {
					return err
				}
				logSuccess("Youdao credentials saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "tencent <secretid> <secretkey>",
			Short: "Store Tencent Cloud credentials",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.SetTencentCredentials(config.TencentCredentials{SecretID: args[0], SecretKey: args[1]}); err != nil {
					return err
				}
				logSuccess("Tencent credentials saved")
				return nil
			},
		},
	)
	return cmd
}

func newConfigAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Manage OpenAI-compatible endpoint configurations",
	}

	var name, baseURL, apiKey, model, prompt, vendor string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an AI endpoint configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" || apiKey == "" || model == "" {
				return fmt.Errorf("--base-url, --api-key and --model are required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			added, err := store.AddAIConfig(config.AIConfig{
				Name:           name,
				BaseURL:        baseURL,
				APIKey:         apiKey,
				ModelName:      model,
				PromptTemplate: prompt,
				Vendor:         vendor,
			})
			if err != nil {
				return err
			}
			logSuccess("AI configuration %s added (id %s)", added.Name, added.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Display name")
	addCmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (e.g. https://api.deepseek.com/v1)")
	addCmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	addCmd.Flags().StringVar(&model, "model", "", "Model name")
	addCmd.Flags().StringVar(&prompt, "prompt", "", "Prompt template ({text} is replaced with the input)")
	addCmd.Flags().StringVar(&vendor, "vendor", "", "Vendor label")

	cmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List AI endpoint configurations",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				configs := store.AIConfigs()
				if len(configs) == 0 {
					logInfo("no AI configurations")
					return nil
				}
				current := store.CurrentAIConfigID()
				for _, c := range configs {
					marker := " "
					if c.ID == current {
						marker = "*"
					}
					fmt.Printf("%s %s  %s  %s (%s)\n", marker, c.ID, c.Name, c.ModelName, c.BaseURL)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "use <id>",
			Short: "Select the current AI configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.SetCurrentAIConfigID(args[0]); err != nil {
					return err
				}
				logSuccess("current AI configuration set to %s", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove an AI endpoint configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.RemoveAIConfig(args[0]); err != nil {
					return err
				}
				logSuccess("AI configuration %s removed", args[0])
				return nil
			},
		},
	)
	return cmd
}

// ---------------------------------------------------------------------------
// panel
// ---------------------------------------------------------------------------

func newPanelCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Serve the translate panel over WebSocket",
		Long: `Serve the translate-panel message protocol.

Endpoints:
  GET /ws       WebSocket carrying JSON message frames
  GET /healthz  Liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			svc := translate.NewService(store, translate.DefaultOptions())
			handler := panel.NewHandler(svc, store, tts.NewService())

			logInfo("panel listening on %s", addr)
			return panel.NewServer(handler).Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8733", "Listen address")
	return cmd
}
