// Package textutil implements text classification and rewriting for the
// translation pipeline: CJK script detection, the zh/en language-pair
// choice, identifier-to-phrase normalization for English input, the hover
// eligibility filter, and the identifier-casing conversions offered on
// translation results.
package textutil

import (
	"strings"
	"unicode"
)

// ContainsChinese reports whether text contains at least one character in
// the CJK Unified Ideographs block (U+4E00..U+9FA5).
func ContainsChinese(text string) bool {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FA5 {
			return true
		}
	}
	return false
}

// DetectLanguagePair chooses the translation direction from the script of
// text: Chinese input translates to English, everything else to Chinese.
func DetectLanguagePair(text string) (source, target string) {
	if ContainsChinese(text) {
		return "zh", "en"
	}
	return "en", "zh"
}

// NormalizeIdentifier converts identifier-style English text into a phrase
// suitable for natural-language translation: underscores, hyphens and dots
// become spaces, and a camelCase boundary (an uppercase letter directly
// after a lowercase one) is split with a space. Runs of consecutive
// uppercase letters stay intact, so "myHTTPServer" becomes "my HTTPServer".
// The function is pure and must not be applied to Chinese-script input.
func NormalizeIdentifier(text string) string {
	if text == "" {
		return text
	}

	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}
		return r
	}, text)

	var out []string
	for _, word := range strings.Fields(replaced) {
		var b strings.Builder
		prev := rune(0)
		for i, r := range word {
			if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			prev = r
		}
		out = append(out, b.String())
	}
	return strings.Join(out, " ")
}

// ShouldTranslate is the hover eligibility filter. It rejects empty or
// oversized selections, text made of nothing but digits, punctuation and
// symbols, and text carrying no CJK or Latin letters at all.
func ShouldTranslate(text string) bool {
	trimmed := strings.TrimSpace(text)
	n := len([]rune(trimmed))
	if n < 1 || n > 200 {
		return false
	}

	onlyNoise := true
	meaningful := false
	for _, r := range trimmed {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) && !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			onlyNoise = false
		}
		if (r >= 0x4E00 && r <= 0x9FA5) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			meaningful = true
		}
	}
	return !onlyNoise && meaningful
}

// spaceLike covers the space characters the casing converters fold into
// underscores before splitting: ASCII space, ideographic space, NBSP,
// zero-width space, narrow NBSP, and the BOM.
func spaceLike(r rune) bool {
	switch r {
	case ' ', '\u3000', '\u00A0', '\u200B', '\u202F', '\uFEFF':
		return true
	}
	return false
}

// casingWords splits text into the word list shared by all four casing
// conversions: space-like runes become underscores, then the text is split
// on runs of underscores and hyphens with empty tokens dropped.
func casingWords(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if spaceLike(r) {
			return '_'
		}
		return r
	}, text)
	mapped = strings.TrimSpace(mapped)

	return strings.FieldsFunc(mapped, func(r rune) bool {
		return r == '_' || r == '-'
	})
}

func capitalize(word string) string {
	r := []rune(strings.ToLower(word))
	if len(r) == 0 {
		return ""
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// ToUpperCamelCase converts "hello world" to "HelloWorld".
func ToUpperCamelCase(text string) string {
	var b strings.Builder
	for _, w := range casingWords(text) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// ToLowerCamelCase converts "hello world" to "helloWorld".
func ToLowerCamelCase(text string) string {
	words := casingWords(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// ToUnderscoreCase converts "hello world" to "hello_world".
func ToUnderscoreCase(text string) string {
	words := casingWords(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// ToKebabCase converts "hello world" to "hello-world".
func ToKebabCase(text string) string {
	words := casingWords(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}
