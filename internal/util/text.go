package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reWordToken = regexp.MustCompile(`[\w\-]+`)

	titleCaser = cases.Title(language.English)
)

// NormalizeName lower-cases and collapses whitespace so product names compare
// case-insensitively.
func NormalizeName(input string) string {
	return strings.ToLower(NormalizeSpaces(input))
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// Pluralize returns the naive plural surface form: append "s" unless the name
// already ends in one.
func Pluralize(name string) string {
	if strings.HasSuffix(strings.ToLower(name), "s") {
		return name
	}
	return name + "s"
}

func TitleCase(input string) string {
	return titleCaser.String(input)
}

// Token is a word token together with its byte offset in the source text.
type Token struct {
	Text  string
	Start int
}

func Tokenize(text string) []Token {
	spans := reWordToken.FindAllStringIndex(text, -1)
	out := make([]Token, 0, len(spans))
	for _, span := range spans {
		out = append(out, Token{Text: text[span[0]:span[1]], Start: span[0]})
	}
	return out
}

func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
