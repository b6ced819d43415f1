package domain

import "strings"

var supportedLanguages = []string{"pt", "en", "es", "fr", "ko", "it", "de", "zh", "ja", "ru", "ar", "hi"}

var displayNames = map[string]string{
	"pt": "Português",
	"en": "English",
	"es": "Español",
	"fr": "Français",
	"ko": "한국어",
	"it": "Italiano",
	"de": "Deutsch",
	"zh": "中文",
	"ja": "日本語",
	"ru": "Русский",
	"ar": "العربية",
	"hi": "हिन्दी",
}

var voices = map[string]string{
	"pt": "pt-BR",
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"ko": "ko-KR",
}

const defaultVoice = "en-US"

// SupportedLanguages returns the language codes the translator accepts.
func SupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// NormalizeLanguage lowercases a code and strips any region suffix ("pt-BR" -> "pt").
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		code = code[:idx]
	}
	return code
}

func IsSupported(code string) bool {
	code = NormalizeLanguage(code)
	for _, l := range supportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// DisplayName returns the native name of a language, or the code itself.
func DisplayName(code string) string {
	if name, ok := displayNames[NormalizeLanguage(code)]; ok {
		return name
	}
	return code
}

// Voice maps a language code to the speech synthesis locale used for playback.
func Voice(code string) string {
	if v, ok := voices[NormalizeLanguage(code)]; ok {
		return v
	}
	return defaultVoice
}
