package main

import (
	"log"

	"github.com/dalebar/viaductecho-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ viaduct failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ viaduct failed: %v", err)
	}
}
