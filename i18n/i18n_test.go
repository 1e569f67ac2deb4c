package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "zh_CN.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "zh_CN" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "zh_CN")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "zh_CN.UTF-8")

		if got := detectLanguage(); got != "zh_CN" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "zh_CN")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("translation failed"); got != "translation failed" {
		t.Fatalf("T fallback = %q, want passthrough", got)
	}
}

func TestTTranslatesAfterInit(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("zh_CN")
	if got := T("translation failed"); got != "翻译失败" {
		t.Fatalf("T(zh_CN) = %q, want 翻译失败", got)
	}

	// Unknown msgids pass through unchanged.
	if got := T("no such msgid"); got != "no such msgid" {
		t.Fatalf("unknown msgid = %q, want passthrough", got)
	}
}
