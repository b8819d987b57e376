package main

import (
	"log/slog"
	"os"

	"github.com/gerardrbentley/fidelity-account-overview/internal/app"
	"github.com/gerardrbentley/fidelity-account-overview/web"
)

func main() {
	frontendFS, err := web.StaticFS()
	if err != nil {
		slog.Warn("Frontend embedding failed", slog.String("error", err.Error()))
		frontendFS = nil
	}

	application, err := app.NewApplication(frontendFS, web.ExampleCSV())
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
