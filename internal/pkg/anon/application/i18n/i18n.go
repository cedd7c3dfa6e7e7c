// Package i18n holds the bot's user-facing strings for en, ru and uz.
package i18n

import (
	"fmt"
	"strings"
)

const Default = "en"

// Supported lists the language codes in menu order.
var Supported = []string{"uz", "ru", "en"}

// Normalize maps any locale tag to a supported code; unknown tags fall back to Default.
func Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(c, "ru"):
		return "ru"
	case strings.HasPrefix(c, "uz"):
		return "uz"
	default:
		return Default
	}
}

// IsSupported reports whether code is exactly one of Supported.
func IsSupported(code string) bool {
	for _, s := range Supported {
		if s == code {
			return true
		}
	}
	return false
}

// T looks up key for lang, falling back to English and then to the key itself.
// kv are name/value pairs substituted into {name} placeholders.
func T(lang, key string, kv ...any) string {
	entry, ok := dict[Normalize(lang)][key]
	if !ok {
		if entry, ok = dict[Default][key]; !ok {
			return key
		}
	}
	if len(kv) < 2 {
		return entry
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(kv[i])+"}", fmt.Sprint(kv[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(entry)
}

// KindLabel is the bracketed placeholder tag for a content kind, e.g. "[photo]".
func KindLabel(lang, kind string) string {
	return "[" + T(lang, "kind_"+kind) + "]"
}
