package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			got := requireEnv(tt.key)
			if !tt.wantPanic && got != tt.value {
				t.Errorf("requireEnv() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{name: "unset uses default", value: "", def: 5 * time.Second, want: 5 * time.Second},
		{name: "valid value", value: "2m", def: 5 * time.Second, want: 2 * time.Minute},
		{name: "garbage uses default", value: "not-a-duration", def: time.Hour, want: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_DURATION", tt.value)
			}
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "*", want: []string{"*"}},
		{name: "spaces and quotes", input: ` "https://a.example" , 'https://b.example' `, want: []string{"https://a.example", "https://b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadSourcesMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSources() error: %v", err)
	}
	if len(cfg.Feeds) != 2 || len(cfg.Scrapers) != 2 {
		t.Errorf("defaults = %d feeds, %d scrapers", len(cfg.Feeds), len(cfg.Scrapers))
	}
	if len(cfg.Keywords) == 0 {
		t.Error("default keywords empty")
	}
	if cfg.EventTypeMap["LIVE"] != "music" {
		t.Errorf("event type map = %v", cfg.EventTypeMap)
	}
}

func TestLoadSourcesParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	yaml := `
keywords:
  - stockport
feeds:
  - name: Local Feed
    url: https://feeds.example/rss
scrapers:
  - nub
postcode_prefixes:
  - SK
  - M19
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error: %v", err)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Name != "Local Feed" {
		t.Errorf("feeds = %+v", cfg.Feeds)
	}
	if len(cfg.Scrapers) != 1 || cfg.Scrapers[0] != "nub" {
		t.Errorf("scrapers = %v", cfg.Scrapers)
	}
	if len(cfg.PostcodePrefixes) != 2 {
		t.Errorf("prefixes = %v", cfg.PostcodePrefixes)
	}
	// The event type map is not in the file, so the defaults survive.
	if cfg.EventTypeMap["FEST"] != "festival" {
		t.Errorf("event type map = %v", cfg.EventTypeMap)
	}
}

func TestLoadSourcesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte("feeds: [unclosed"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadSources(path); err == nil {
		t.Error("LoadSources() should fail on malformed yaml")
	}
}
