package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugMultiHyphen  = regexp.MustCompile(`-+`)
)

// letters không tách dấu được bằng NFD
var foldSpecial = strings.NewReplacer(
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"ß", "ss", "æ", "ae", "Æ", "AE",
)

// RemoveDiacritics: "Nguyễn Nhật Ánh" → "Nguyen Nhat Anh", "Café" → "Cafe"
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, foldSpecial.Replace(input))
	if err != nil {
		return input
	}
	return out
}

// GenerateSlug: "Re:Zero − Starting Life!" → "re-zero-starting-life"
func GenerateSlug(input string) string {
	// Step 1: fold diacritics
	ascii := RemoveDiacritics(input)

	// Step 2: lowercase, whitespace/punctuation thành hyphen
	lower := strings.ToLower(ascii)
	hyphenated := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == ':' || r == '/' || r == '.' {
			return '-'
		}
		return r
	}, lower)

	// Step 3: chỉ giữ a-z, 0-9, -
	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")
	normalized := slugMultiHyphen.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}
