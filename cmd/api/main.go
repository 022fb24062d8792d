package main

import (
	"log/slog"
	"os"

	"agora/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server (REST pull surface + websocket push surface).
func main() {
	app, err := bootstrap.BuildAPI()
	if err != nil {
		slog.Error("agora api failed to start", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		slog.Error("agora api stopped", "error", err.Error())
		os.Exit(1)
	}
}
