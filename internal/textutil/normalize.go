package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWordLength is the shortest word (in runes) that Words keeps.
const MinWordLength = 3

// markReplacer drops trademark glyphs and typographic quotes.
var markReplacer = strings.NewReplacer(
	"™", "",
	"®", "",
	"©", "",
	"‘", "",
	"’", "",
	"“", "",
	"”", "",
)

// Normalize canonicalizes text for case- and punctuation-insensitive
// comparison. It never fails and is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := markReplacer.Replace(text)
	// Casers and transform chains carry state, so each call builds its own.
	cleaned = cases.Lower(language.Und).String(cleaned)
	if folded, _, err := transform.String(foldChain(), cleaned); err == nil {
		cleaned = folded
	}

	var builder strings.Builder
	builder.Grow(len(cleaned))
	for _, r := range cleaned {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', unicode.IsSpace(r),
			unicode.Is(unicode.Mc, r):
			builder.WriteRune(r)
		}
	}
	// Dropping punctuation can leave composable pairs adjacent.
	return strings.TrimSpace(norm.NFC.String(builder.String()))
}

// Words splits normalized text on whitespace and keeps words longer than two runes.
func Words(normalized string) []string {
	fields := strings.Fields(normalized)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) < MinWordLength {
			continue
		}
		words = append(words, field)
	}
	return words
}

func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
