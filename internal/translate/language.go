package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName renders a language for prompts. BCP-47 tags such as "fr" or
// "pt-BR" become English names; anything else (e.g. "French", "Klingon") is
// returned unchanged.
func LanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return lang
	}

	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return lang
	}

	name := display.English.Tags().Name(tag)
	if name == "" {
		return lang
	}
	return name
}
