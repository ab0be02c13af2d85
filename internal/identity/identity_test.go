package identity

import (
	"testing"
	"time"
)

func TestHashURLDeterministic(t *testing.T) {
	link := "https://www.example.com/news/story-1"
	if HashURL(link) != HashURL(link) {
		t.Fatal("HashURL() is not deterministic")
	}
	if len(HashURL(link)) != 32 {
		t.Errorf("HashURL() length = %d, want 32 hex chars", len(HashURL(link)))
	}
}

func TestHashURLNoNormalization(t *testing.T) {
	// Case and trailing-slash variants are distinct identities on purpose.
	pairs := [][2]string{
		{"http://a.com/x", "http://a.com/x/"},
		{"http://a.com/x", "http://A.com/x"},
		{"http://a.com/x?b=1&c=2", "http://a.com/x?c=2&b=1"},
	}
	for _, p := range pairs {
		if HashURL(p[0]) == HashURL(p[1]) {
			t.Errorf("HashURL(%q) == HashURL(%q), want distinct", p[0], p[1])
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"punctuation stripped", "Stockport Council Meeting!!", SlugMaxLen, "stockport-council-meeting"},
		{"only separators", "   ---   ", SlugMaxLen, ""},
		{"empty", "", SlugMaxLen, ""},
		{"mixed runs", "Live  Music --- at  the Plaza", SlugMaxLen, "live-music-at-the-plaza"},
		{"underscore kept", "open_mic night", SlugMaxLen, "open_mic-night"},
		{"truncation", "aaaa bbbb cccc", 6, "aaaa-b"},
		{"unicode letters kept", "Café Crawl", SlugMaxLen, "café-crawl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in, tt.max); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("The Smiths: Live! (Tribute)"); got != "thesmithslivetribute" {
		t.Errorf("NormalizeTitle() = %q", got)
	}

	long := "abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij"
	if got := NormalizeTitle(long); len([]rune(got)) != 50 {
		t.Errorf("NormalizeTitle() length = %d, want 50", len([]rune(got)))
	}
}

func TestEventHashDayGranularity(t *testing.T) {
	evening := time.Date(2024, 2, 14, 19, 30, 0, 0, time.UTC)
	matinee := time.Date(2024, 2, 14, 14, 0, 0, 0, time.UTC)

	// Same venue, same day, same normalized title: one identity regardless
	// of time of day or punctuation differences.
	h1 := EventHash(7, evening, "Jazz Night!")
	h2 := EventHash(7, matinee, "jazz night")
	if h1 != h2 {
		t.Error("EventHash() should ignore time of day and punctuation")
	}

	if EventHash(7, evening, "Jazz Night") == EventHash(8, evening, "Jazz Night") {
		t.Error("EventHash() should depend on venue id")
	}
	nextDay := evening.AddDate(0, 0, 1)
	if EventHash(7, evening, "Jazz Night") == EventHash(7, nextDay, "Jazz Night") {
		t.Error("EventHash() should depend on the date")
	}
}

func TestEventSlug(t *testing.T) {
	start := time.Date(2024, 2, 14, 19, 30, 0, 0, time.UTC)
	if got := EventSlug("Jazz Night!", start); got != "jazz-night-2024-02-14" {
		t.Errorf("EventSlug() = %q", got)
	}
}
