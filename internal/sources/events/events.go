// Package events fetches raw events from external event listings.
package events

import (
	"context"
	"strings"

	"github.com/dalebar/viaductecho-backend/internal/model"
)

// EventSource is one external origin of events.
type EventSource interface {
	Name() string
	Type() string
	Fetch(ctx context.Context) ([]model.EventInput, error)
}

// FilterByPostcode keeps events whose venue postcode starts with one of
// the given prefixes (case-insensitive).
func FilterByPostcode(events []model.EventInput, prefixes []string) []model.EventInput {
	kept := make([]model.EventInput, 0, len(events))
	for _, e := range events {
		postcode := strings.ToUpper(strings.TrimSpace(e.Venue.Postcode))
		for _, p := range prefixes {
			if strings.HasPrefix(postcode, strings.ToUpper(p)) {
				kept = append(kept, e)
				break
			}
		}
	}
	return kept
}

// FilterByKeywords keeps events whose title, description or venue name
// contains any of the keywords (case-insensitive substring match).
func FilterByKeywords(events []model.EventInput, keywords []string) []model.EventInput {
	kept := make([]model.EventInput, 0, len(events))
	for _, e := range events {
		haystack := strings.ToLower(e.Title + " " + e.Description + " " + e.Venue.Name)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				kept = append(kept, e)
				break
			}
		}
	}
	return kept
}
