package deps

import (
	"time"

	"github.com/dalebar/viaductecho-backend/internal/aggregator"
	"github.com/dalebar/viaductecho-backend/internal/cache"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

type Deps struct {
	Logger    logger.Logger
	Store     *store.Store
	Cache     *cache.Cache // nil disables caching
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	DefaultPageSize int
	MaxPageSize     int

	AdminAPIKey string // empty disables the admin routes

	NewsTrigger   chan struct{} // manual news aggregation runs
	EventsTrigger chan struct{} // manual events aggregation runs
	Events        *aggregator.Events

	UploadDir        string
	MaxUploadBytes   int64
	AllowedImageExts []string
}
