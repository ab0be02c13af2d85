// Package identity holds the pure functions that give articles, venues and
// events their deduplication keys and public slugs. These are contracts:
// changing any of them orphans every hash already stored.
package identity

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// SlugMaxLen is the slug length cap for venues and events.
const SlugMaxLen = 200

// PostSlugMaxLen caps slugs used in published post filenames.
const PostSlugMaxLen = 100

// HashURL returns the md5 hex digest of the exact link string. Deliberately
// no normalization: "http://a/" and "http://a" are different articles.
func HashURL(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

// Slugify lowercases text, drops everything outside word chars, whitespace
// and hyphens, collapses whitespace/hyphen runs to a single hyphen, trims
// leading/trailing hyphens and truncates to maxLen.
func Slugify(text string, maxLen int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case isWord(r), unicode.IsSpace(r), r == '-':
			b.WriteRune(r)
		}
	}

	var out strings.Builder
	lastHyphen := false
	for _, r := range b.String() {
		if unicode.IsSpace(r) || r == '-' {
			if !lastHyphen {
				out.WriteRune('-')
				lastHyphen = true
			}
			continue
		}
		out.WriteRune(r)
		lastHyphen = false
	}

	slug := strings.Trim(out.String(), "-")
	if runes := []rune(slug); len(runes) > maxLen {
		slug = string(runes[:maxLen])
	}
	return slug
}

// NormalizeTitle strips everything outside word chars, lowercases and
// truncates to 50 runes. Part of the event hash input.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if isWord(r) {
			b.WriteRune(r)
		}
	}
	runes := []rune(b.String())
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// EventHash derives the event dedup key. Time of day is excluded on
// purpose: the same venue, day and normalized title is one event no matter
// what start time each fetch reports.
func EventHash(venueID uint, start time.Time, title string) string {
	input := fmt.Sprintf("%d:%s:%s", venueID, start.Format("2006-01-02"), NormalizeTitle(title))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// EventSlug builds "{title-slug}-{YYYY-MM-DD}".
func EventSlug(title string, start time.Time) string {
	return fmt.Sprintf("%s-%s", Slugify(title, SlugMaxLen), start.Format("2006-01-02"))
}

// isWord mirrors regexp \w: letters, digits and underscore.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
