package types

import (
	"path"
	"strings"
)

// Language describes a source language understood by a standard JSON compiler. The value is the one sent in the
// "language" field of the compiler input.
type Language string

const (
	// LanguageSolidity describes Solidity sources (.sol).
	LanguageSolidity Language = "Solidity"
	// LanguageVyper describes Vyper sources (.vy) and interfaces (.vyi).
	LanguageVyper Language = "Vyper"
)

// languageExtensions lists the file extensions of each language, in the order they are probed when resolving an
// import without an extension.
var languageExtensions = map[Language][]string{
	LanguageSolidity: {".sol"},
	LanguageVyper:    {".vy", ".vyi"},
}

// LanguageFromPath returns the language of the provided source path, based on its extension.
func LanguageFromPath(p string) (Language, bool) {
	ext := strings.ToLower(path.Ext(p))
	for lang, exts := range languageExtensions {
		for _, e := range exts {
			if e == ext {
				return lang, true
			}
		}
	}
	return "", false
}

// Extensions returns the file extensions associated with the language.
func (l Language) Extensions() []string {
	return languageExtensions[l]
}

// ParseLanguage parses a language name case-insensitively.
func ParseLanguage(s string) (Language, bool) {
	for lang := range languageExtensions {
		if strings.EqualFold(string(lang), strings.TrimSpace(s)) {
			return lang, true
		}
	}
	return "", false
}
