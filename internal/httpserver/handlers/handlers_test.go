package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/aggregator"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/routes"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

const testAdminKey = "test-admin-key"

func newTestAPI(t *testing.T) (*chi.Mux, *store.Store, deps.Deps) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(dsn, logger.NewNop())
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	d := deps.Deps{
		Logger:           logger.NewNop(),
		Store:            st,
		StartTime:        time.Now(),
		DefaultPageSize:  20,
		MaxPageSize:      100,
		AdminAPIKey:      testAdminKey,
		NewsTrigger:      make(chan struct{}, 1),
		EventsTrigger:    make(chan struct{}, 1),
		Events:           aggregator.NewEvents(st, nil, nil, aggregator.EventsConfig{StaticDir: t.TempDir(), UpcomingLimit: 10, CalendarMonths: 1}, logger.NewNop()),
		UploadDir:        t.TempDir(),
		MaxUploadBytes:   1 << 20,
		AllowedImageExts: []string{".jpg", ".png"},
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return r, st, d
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminHeaders() map[string]string {
	return map[string]string{"X-API-Key": testAdminKey}
}

func seedArticle(t *testing.T, st *store.Store, link string, processed bool) *model.Article {
	t.Helper()
	pub := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a, err := st.InsertArticle(model.ArticleInput{
		Title:   "Stockport viaduct news",
		Link:    link,
		Summary: "summary",
		Source:  "BBC News",
		Type:    "RSS News",
		Pubdate: &pub,
	})
	if err != nil {
		t.Fatalf("InsertArticle() error: %v", err)
	}
	if processed {
		if err := st.MarkProcessed(link); err != nil {
			t.Fatalf("MarkProcessed() error: %v", err)
		}
	}
	return a
}

func seedEvent(t *testing.T, st *store.Store, title string, start time.Time) *model.Event {
	t.Helper()
	venue, err := st.GetOrCreateVenue(model.VenueInput{
		Name:       "Stockport Plaza",
		Postcode:   "SK1 1SP",
		SourceName: "skiddle",
		SourceID:   "v-plaza",
	})
	if err != nil {
		t.Fatalf("GetOrCreateVenue() error: %v", err)
	}
	outcome, event, err := st.InsertEvent(model.EventInput{
		Title:         title,
		StartDatetime: start,
		EventType:     "music",
		SourceName:    "skiddle",
		SourceType:    "api",
		Venue:         model.VenueInput{Name: "Stockport Plaza"},
	}, venue)
	if err != nil || outcome != store.Inserted {
		t.Fatalf("InsertEvent() = %v, %v", outcome, err)
	}
	return event
}

func TestHealthz(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["database"] != "up" {
		t.Errorf("healthz = %v", resp)
	}
}

func TestListArticlesServesProcessedOnly(t *testing.T) {
	r, st, _ := newTestAPI(t)
	seedArticle(t, st, "https://example.com/processed", true)
	seedArticle(t, st, "https://example.com/raw", false)

	w := doJSON(t, r, http.MethodGet, "/api/v1/articles", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Articles   []model.Article  `json:"articles"`
		Pagination store.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Articles) != 1 || resp.Pagination.Total != 1 {
		t.Errorf("articles = %d, total = %d, want 1/1", len(resp.Articles), resp.Pagination.Total)
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/articles/search?q=a", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/articles/9999", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListEventsAndGetBySlug(t *testing.T) {
	r, st, _ := newTestAPI(t)
	event := seedEvent(t, st, "Jazz Night", time.Now().Add(48*time.Hour))

	w := doJSON(t, r, http.MethodGet, "/api/v1/events", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Events []model.Event `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(resp.Events))
	}
	if resp.Events[0].Venue == nil {
		t.Error("venue not preloaded")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/events/"+event.Slug, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get by slug status = %d", w.Code)
	}
}

func TestListEventsBadDateFilter(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/events?from_date=notadate", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEventsCalendar(t *testing.T) {
	r, st, _ := newTestAPI(t)
	start := time.Now().Add(72 * time.Hour)
	seedEvent(t, st, "Calendar Gig", start)

	path := fmt.Sprintf("/api/v1/events/calendar?year=%d&month=%d", start.Year(), int(start.Month()))
	w := doJSON(t, r, http.MethodGet, path, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Calendar map[string]int `json:"calendar"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Calendar[start.Format("2006-01-02")] != 1 {
		t.Errorf("calendar = %v", resp.Calendar)
	}
}

func TestVenueEventsBySlug(t *testing.T) {
	r, st, _ := newTestAPI(t)
	seedEvent(t, st, "Venue Gig", time.Now().Add(24*time.Hour))

	w := doJSON(t, r, http.MethodGet, "/api/v1/venues/stockport-plaza/events", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Venue  model.Venue   `json:"venue"`
		Events []model.Event `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Venue.Slug != "stockport-plaza" || len(resp.Events) != 1 {
		t.Errorf("venue = %q, events = %d", resp.Venue.Slug, len(resp.Events))
	}
}

func TestAdminRequiresKey(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/venues", map[string]any{"name": "X"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/venues", map[string]any{"name": "X"},
		map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", w.Code)
	}
}

func TestAdminVenueLifecycle(t *testing.T) {
	r, _, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/venues",
		map[string]any{"name": "The Bakery", "postcode": "SK3 8AB"}, adminHeaders())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var venue model.Venue
	if err := json.Unmarshal(w.Body.Bytes(), &venue); err != nil {
		t.Fatalf("decode: %v", err)
	}

	path := fmt.Sprintf("/api/v1/admin/venues/%d", venue.ID)
	w = doJSON(t, r, http.MethodPatch, path, map[string]any{"town": "Stockport"}, adminHeaders())
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, path, nil, adminHeaders())
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestAdminEventCreateAndFeature(t *testing.T) {
	r, st, _ := newTestAPI(t)
	venue, err := st.GetOrCreateVenue(model.VenueInput{Name: "Hat Works", SourceName: "admin"})
	if err != nil {
		t.Fatalf("GetOrCreateVenue() error: %v", err)
	}

	start := time.Now().Add(96 * time.Hour).Truncate(time.Second)
	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/events", map[string]any{
		"title":          "Hat Exhibition",
		"start_datetime": start.Format(time.RFC3339),
		"venue_id":       venue.ID,
		"event_type":     "exhibition",
		"is_free":        true,
	}, adminHeaders())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var event model.Event
	if err := json.Unmarshal(w.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !event.IsFree || event.SourceName != "admin" {
		t.Errorf("event = %+v", event)
	}

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/admin/events/%d/feature", event.ID),
		map[string]any{"featured": true}, adminHeaders())
	if w.Code != http.StatusOK {
		t.Fatalf("feature status = %d: %s", w.Code, w.Body.String())
	}
	var featured model.Event
	if err := json.Unmarshal(w.Body.Bytes(), &featured); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !featured.IsFeatured {
		t.Error("event not featured")
	}
}

func TestAdminTriggers(t *testing.T) {
	r, _, d := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/aggregation/news/trigger", nil, adminHeaders())
	if w.Code != http.StatusAccepted {
		t.Fatalf("trigger status = %d", w.Code)
	}
	select {
	case <-d.NewsTrigger:
	default:
		t.Error("trigger channel empty")
	}

	// Queue full -> conflict.
	d.EventsTrigger <- struct{}{}
	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/aggregation/events/trigger", nil, adminHeaders())
	if w.Code != http.StatusConflict {
		t.Errorf("full queue status = %d, want 409", w.Code)
	}
}

func TestUploadImage(t *testing.T) {
	r, _, _ := newTestAPI(t)

	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	part, err := mp.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte("fake image bytes"))
	_ = mp.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("X-API-Key", testAdminKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasSuffix(resp["filename"], ".jpg") {
		t.Errorf("filename = %q", resp["filename"])
	}
}

func TestUploadImageRejectsExtension(t *testing.T) {
	r, _, _ := newTestAPI(t)

	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	part, _ := mp.CreateFormFile("image", "script.sh")
	_, _ = part.Write([]byte("#!/bin/sh"))
	_ = mp.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images", &buf)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("X-API-Key", testAdminKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("upload status = %d, want 400", w.Code)
	}
}
