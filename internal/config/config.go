package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabaseURL string // postgres://... or sqlite file path / file::memory:
	SourcesFile string // path to sources.yaml (feeds, keywords, skiddle region)

	// Collaborators
	OpenAIAPIKey  string // empty => summarizer falls back to excerpts
	GitHubToken   string
	GitHubRepo    string // "owner/name"
	GitHubBranch  string
	SkiddleAPIKey string // empty => skiddle source disabled

	// Admin surface
	AdminAPIKey string // empty => every admin request is rejected

	// HTTP / API
	CORSOrigins       []string
	DefaultPageSize   int
	MaxPageSize       int
	RateLimitEnabled  bool
	RateLimitRequests int           // refill per IP per minute
	RateLimitWindow   time.Duration // informational, mirrors the original config
	RequestTimeout    time.Duration // per-request handler timeout
	TrustProxy        bool          // resolve client IPs from proxy headers

	// Outbound HTTP
	HTTPTimeout time.Duration

	// Aggregation
	ArticleDelay    time.Duration // fixed sleep between article enrichments
	NewsInterval    time.Duration // how often the news runner fires
	NewsWindowStart int           // local hour, inclusive
	NewsWindowEnd   int           // local hour, inclusive
	EventsInterval  time.Duration // daily events run

	// Events search region
	EventsLatitude   string
	EventsLongitude  string
	EventsRadius     int // miles
	EventsDaysAhead  int
	UpcomingLimit    int // events.json snapshot size
	CalendarMonths   int // months of calendar in the snapshot
	StaticDir        string
	UploadDir        string
	MaxUploadBytes   int64
	AllowedImageExts []string

	// Redis (optional read cache; empty addr disables it)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisDialTimeout time.Duration
	RedisReadTimeout time.Duration
	CacheTTL         time.Duration
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VIADUCT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VIADUCT_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("VIADUCT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VIADUCT_PRETTY_LOG", false),

		// Storage
		DatabaseURL: requireEnv("DATABASE_URL"),
		SourcesFile: getenv("VIADUCT_SOURCES_FILE", "sources.yaml"),

		// Collaborators
		OpenAIAPIKey:  getenv("OPENAI_API_KEY", ""),
		GitHubToken:   getenv("GITHUB_TOKEN", ""),
		GitHubRepo:    getenv("GITHUB_REPO", ""),
		GitHubBranch:  getenv("GITHUB_BRANCH", "main"),
		SkiddleAPIKey: getenv("SKIDDLE_API_KEY", ""),
		AdminAPIKey:   getenv("ADMIN_API_KEY", ""),

		// API
		CORSOrigins:       splitAndTrim(getenv("CORS_ORIGINS", "*")),
		DefaultPageSize:   getenvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:       getenvInt("MAX_PAGE_SIZE", 100),
		RateLimitEnabled:  mustBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequests: getenvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   mustDuration("RATE_LIMIT_WINDOW", time.Minute),
		RequestTimeout:    mustDuration("VIADUCT_REQUEST_TIMEOUT", 30*time.Second),
		TrustProxy:        mustBool("VIADUCT_TRUST_PROXY", false),

		// Outbound HTTP
		HTTPTimeout: mustDuration("HTTP_TIMEOUT", 30*time.Second),

		// Aggregation
		ArticleDelay:    mustDuration("VIADUCT_ARTICLE_DELAY", 2*time.Second),
		NewsInterval:    mustDuration("VIADUCT_NEWS_INTERVAL", time.Hour),
		NewsWindowStart: getenvInt("VIADUCT_NEWS_WINDOW_START", 5),
		NewsWindowEnd:   getenvInt("VIADUCT_NEWS_WINDOW_END", 20),
		EventsInterval:  mustDuration("VIADUCT_EVENTS_INTERVAL", 24*time.Hour),

		// Events region (Stockport town centre by default)
		EventsLatitude:   getenv("EVENTS_LATITUDE", "53.4106"),
		EventsLongitude:  getenv("EVENTS_LONGITUDE", "-2.1575"),
		EventsRadius:     getenvInt("EVENTS_RADIUS_MILES", 5),
		EventsDaysAhead:  getenvInt("EVENTS_FETCH_DAYS_AHEAD", 60),
		UpcomingLimit:    getenvInt("VIADUCT_UPCOMING_LIMIT", 500),
		CalendarMonths:   getenvInt("VIADUCT_CALENDAR_MONTHS", 3),
		StaticDir:        getenv("VIADUCT_STATIC_DIR", "static_data"),
		UploadDir:        getenv("VIADUCT_UPLOAD_DIR", "uploads"),
		MaxUploadBytes:   int64(getenvInt("VIADUCT_MAX_UPLOAD_BYTES", 5<<20)),
		AllowedImageExts: splitAndTrim(getenv("VIADUCT_IMAGE_EXTS", ".jpg,.jpeg,.png,.webp,.gif")),

		// Redis cache
		RedisAddr:        getenv("VIADUCT_REDIS_ADDR", ""),
		RedisPassword:    getenv("VIADUCT_REDIS_PASSWORD", ""),
		RedisDB:          getenvInt("VIADUCT_REDIS_DB", 0),
		RedisDialTimeout: mustDuration("VIADUCT_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout: mustDuration("VIADUCT_REDIS_READ_TIMEOUT", 3*time.Second),
		CacheTTL:         mustDuration("VIADUCT_CACHE_TTL", 5*time.Minute),
	}

	if cfg.NewsWindowStart < 0 || cfg.NewsWindowStart > 23 || cfg.NewsWindowEnd < 0 || cfg.NewsWindowEnd > 23 {
		panic("❌ FATAL: VIADUCT_NEWS_WINDOW_START/END must be hours in [0,23]")
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
