// Package i18n translates the handful of user-facing strings. Keys are the
// English text, so a missing translation falls back to English.
package i18n

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeandeaual/go-locale"

	"github.com/sadopc/zenfocus/internal/phase"
)

// EnvLang overrides locale detection.
const EnvLang = "ZENFOCUS_LANG"

var supported = []string{"en", "pt", "es", "de"}

var translations = map[string]map[string]string{
	"Focus": {
		"pt": "Foco",
		"es": "Enfoque",
		"de": "Fokus",
	},
	"Short Break": {
		"pt": "Pausa Curta",
		"es": "Descanso Corto",
		"de": "Kurze Pause",
	},
	"Long Break": {
		"pt": "Pausa Longa",
		"es": "Descanso Largo",
		"de": "Lange Pause",
	},
	"Are you sure you want to redo the current phase?": {
		"pt": "Tem certeza de que deseja refazer a fase atual?",
		"es": "¿Seguro que quieres repetir la fase actual?",
		"de": "Möchtest du die aktuelle Phase wirklich wiederholen?",
	},
	"Are you sure you want to reset the current round?": {
		"pt": "Tem certeza de que deseja reiniciar a rodada atual?",
		"es": "¿Seguro que quieres reiniciar la ronda actual?",
		"de": "Möchtest du die aktuelle Runde wirklich zurücksetzen?",
	},
	"Cancel": {
		"pt": "Cancelar",
		"es": "Cancelar",
		"de": "Abbrechen",
	},
	"Session complete": {
		"pt": "Sessão concluída",
		"es": "Sesión completada",
		"de": "Sitzung abgeschlossen",
	},
	"Time for %s": {
		"pt": "Hora de %s",
		"es": "Hora de %s",
		"de": "Zeit für %s",
	},
	"Round %d of %d": {
		"pt": "Rodada %d de %d",
		"es": "Ronda %d de %d",
		"de": "Runde %d von %d",
	},
	"Welcome to zenfocus": {
		"pt": "Bem-vindo ao zenfocus",
		"es": "Bienvenido a zenfocus",
		"de": "Willkommen bei zenfocus",
	},
}

// Translator looks up strings for one language.
type Translator struct {
	lang string
}

// New returns a translator for lang. Unsupported languages use English.
func New(lang string) *Translator {
	return &Translator{lang: normalize(lang)}
}

// Detect picks a language from the override, then the system locale.
func Detect(override string) string {
	if forced := strings.TrimSpace(override); forced != "" {
		return normalize(forced)
	}
	if forced := strings.TrimSpace(os.Getenv(EnvLang)); forced != "" {
		return normalize(forced)
	}
	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		return "en"
	}
	return normalize(userLocales[0])
}

func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, lang := range supported {
		if strings.HasPrefix(tag, lang) {
			return lang
		}
	}
	return "en"
}

// Lang returns the active language code.
func (t *Translator) Lang() string {
	return t.lang
}

// T translates key.
func (t *Translator) T(key string) string {
	if translated, ok := translations[key][t.lang]; ok {
		return translated
	}
	return key
}

// Tf translates a format string and applies args.
func (t *Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Phase returns the localized label of p.
func (t *Translator) Phase(p phase.Phase) string {
	return t.T(p.Label())
}
