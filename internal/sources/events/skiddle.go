package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/utils"
)

const (
	skiddleBaseURL = "https://www.skiddle.com/api/v1"
	skiddlePageLim = 100  // Skiddle max per page
	skiddleMaxRows = 1000 // safety cap across pages
)

// SkiddleConfig carries the search window and filter lists for one run.
type SkiddleConfig struct {
	APIKey       string
	Latitude     string
	Longitude    string
	RadiusMiles  int
	DaysAhead    int
	Prefixes     []string          // venue postcode prefixes to keep
	Keywords     []string          // rescue filter for events outside the prefixes
	EventTypeMap map[string]string // Skiddle eventcode -> local event type
	Timeout      time.Duration
}

// SkiddleSource pages through the Skiddle events search API.
// API docs: https://github.com/Skiddle/web-api
type SkiddleSource struct {
	cfg     SkiddleConfig
	baseURL string
	client  *http.Client
	log     logger.Logger
}

func NewSkiddleSource(cfg SkiddleConfig, log logger.Logger) (*SkiddleSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("skiddle: api key not configured")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SkiddleSource{
		cfg:     cfg,
		baseURL: skiddleBaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

func (s *SkiddleSource) Name() string { return "skiddle" }
func (s *SkiddleSource) Type() string { return "api" }

type skiddleResponse struct {
	Results []skiddleEvent `json:"results"`
}

type skiddleEvent struct {
	ID            json.Number `json:"id"`
	EventName     string      `json:"eventname"`
	EventCode     string      `json:"eventcode"`
	Description   string      `json:"description"`
	Date          string      `json:"date"`
	OpeningTimes  struct {
		DoorsOpen string `json:"doorsopen"`
	} `json:"openingtimes"`
	EntryPrice    string      `json:"entryprice"`
	Link          string      `json:"link"`
	ImageURL      string      `json:"imageurl"`
	LargeImageURL string      `json:"largeimageurl"`
	Venue         skiddleVenue `json:"venue"`
}

type skiddleVenue struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Town      string      `json:"town"`
	Postcode  string      `json:"postcode"`
	Latitude  *float64    `json:"latitude"`
	Longitude *float64    `json:"longitude"`
}

func (s *SkiddleSource) Fetch(ctx context.Context) ([]model.EventInput, error) {
	now := time.Now()
	minDate := now.Format("2006-01-02")
	maxDate := now.AddDate(0, 0, s.cfg.DaysAhead).Format("2006-01-02")

	var all []model.EventInput
	for offset := 0; ; offset += skiddlePageLim {
		s.log.Info("fetching skiddle events", logger.Int("offset", offset))

		results, err := s.search(ctx, minDate, maxDate, offset)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			break
		}

		for _, raw := range results {
			ev, ok := s.parseEvent(raw)
			if ok {
				all = append(all, ev)
			}
		}

		if len(results) < skiddlePageLim {
			break
		}
		if offset+skiddlePageLim >= skiddleMaxRows {
			s.log.Warn("skiddle pagination safety cap reached")
			break
		}
	}

	// Keep everything in the local postcode area, plus anything outside it
	// that still matches a local keyword.
	local := FilterByPostcode(all, s.cfg.Prefixes)
	seen := make(map[string]bool, len(local))
	for _, e := range local {
		seen[e.SourceID] = true
	}
	var rest []model.EventInput
	for _, e := range all {
		if !seen[e.SourceID] {
			rest = append(rest, e)
		}
	}
	final := append(local, FilterByKeywords(rest, s.cfg.Keywords)...)

	s.log.Info("skiddle fetch complete",
		logger.Int("total", len(all)),
		logger.Int("kept", len(final)))
	return final, nil
}

func (s *SkiddleSource) search(ctx context.Context, minDate, maxDate string, offset int) ([]skiddleEvent, error) {
	params := url.Values{
		"api_key":     {s.cfg.APIKey},
		"latitude":    {s.cfg.Latitude},
		"longitude":   {s.cfg.Longitude},
		"radius":      {strconv.Itoa(s.cfg.RadiusMiles)},
		"minDate":     {minDate},
		"maxDate":     {maxDate},
		"limit":       {strconv.Itoa(skiddlePageLim)},
		"offset":      {strconv.Itoa(offset)},
		"description": {"1"},
	}

	reqURL := s.baseURL + "/events/search/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("skiddle request: %w", err)
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("skiddle request: status %d", resp.StatusCode)
	}

	var decoded skiddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("skiddle decode: %w", err)
	}
	return decoded.Results, nil
}

func (s *SkiddleSource) parseEvent(raw skiddleEvent) (model.EventInput, bool) {
	if raw.Date == "" {
		return model.EventInput{}, false
	}

	doors := raw.OpeningTimes.DoorsOpen
	if doors == "" {
		doors = "19:00"
	}
	start, err := time.Parse("2006-01-02 15:04", raw.Date+" "+doors)
	if err != nil {
		start, err = time.Parse("2006-01-02", raw.Date)
		if err != nil {
			s.log.Warn("skipping event with bad date",
				logger.String("id", raw.ID.String()),
				logger.String("date", raw.Date))
			return model.EventInput{}, false
		}
	}

	priceMin, priceMax, isFree := parsePrice(raw.EntryPrice)

	title := raw.EventName
	if title == "" {
		title = "Untitled Event"
	}
	venueName := raw.Venue.Name
	if venueName == "" {
		venueName = "Unknown Venue"
	}

	short := raw.Description
	if len(short) > 500 {
		short = short[:500]
	}
	image := raw.LargeImageURL
	if image == "" {
		image = raw.ImageURL
	}

	return model.EventInput{
		Title:            title,
		Description:      raw.Description,
		ShortDescription: short,
		StartDatetime:    start,
		EventType:        s.mapEventType(raw.EventCode),
		ImageURL:         image,
		TicketURL:        raw.Link,
		PriceMin:         priceMin,
		PriceMax:         priceMax,
		IsFree:           isFree,
		SourceName:       s.Name(),
		SourceType:       s.Type(),
		SourceID:         raw.ID.String(),
		SourceURL:        raw.Link,
		Venue: model.VenueInput{
			Name:         venueName,
			AddressLine1: raw.Venue.Address,
			Town:         raw.Venue.Town,
			Postcode:     raw.Venue.Postcode,
			Latitude:     raw.Venue.Latitude,
			Longitude:    raw.Venue.Longitude,
			SourceName:   s.Name(),
			SourceID:     raw.Venue.ID.String(),
		},
	}, true
}

func (s *SkiddleSource) mapEventType(code string) string {
	if t, ok := s.cfg.EventTypeMap[code]; ok {
		return t
	}
	return "other"
}

// parsePrice understands "free", "12.50" and "10 - 15" with optional
// currency symbols. Unparseable strings leave both bounds nil.
func parsePrice(entry string) (min, max *float64, free bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, nil, false
	}
	if strings.EqualFold(entry, "free") {
		return nil, nil, true
	}

	cleaned := strings.NewReplacer("£", "", ",", "").Replace(entry)
	if lo, hi, found := strings.Cut(cleaned, "-"); found {
		loVal, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		hiVal, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err1 != nil || err2 != nil {
			return nil, nil, false
		}
		return &loVal, &hiVal, false
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return nil, nil, false
	}
	hi := val
	return &val, &hi, false
}
