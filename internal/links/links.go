// Package links builds Behind the Name profile links and checks which
// profile pages exist.
package links

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultFirstNameBase = "https://www.behindthename.com/name/"
	DefaultLastNameBase  = "https://surnames.behindthename.com/name/"
)

var lower = cases.Lower(language.Und)

// Slug lowercases name and strips its diacritics, so "Zoë" and "zoe" share a page.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return url.PathEscape(lower.String(folded))
}

// FirstNameURL returns the first name profile page of name.
func FirstNameURL(name string) string {
	return DefaultFirstNameBase + Slug(name)
}

// LastNameURL returns the surname profile page of name.
func LastNameURL(name string) string {
	return DefaultLastNameBase + Slug(name)
}

// Hyperlink formats a Markdown link.
func Hyperlink(title, url string) string {
	return fmt.Sprintf("[%s](%s)", title, url)
}
