package store

import (
	"fmt"
	"testing"

	"github.com/dalebar/viaductecho-backend/internal/logger"
)

// newTestStore opens a store on a per-test in-memory SQLite database.
// cache=shared keeps the schema visible across the pool's connections.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := Open(dsn, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return s
}

func TestOpenAndPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}
