package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/moneywise/moneywise/internal/aiproxy"
	"github.com/moneywise/moneywise/internal/config"
	"github.com/moneywise/moneywise/internal/logger"
)

func main() {
	cfg := config.LoadAIProxy()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	ctx := context.Background()
	gemini, err := aiproxy.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("failed to initialize gemini client", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := gemini.Close()
		if closeErr != nil {
			slog.Error("failed to close gemini client", "error", closeErr)
		}
	}()

	handler := aiproxy.NewHandler(gemini, cfg.MaxHistory, cfg.IsDevelopment())
	slog.Info("ai proxy starting", "port", cfg.AIProxyPort, "model", cfg.GeminiModel)

	err = http.ListenAndServe(":"+cfg.AIProxyPort, handler.Routes())
	if err != nil {
		slog.Error("ai proxy failed", "error", err)
		panic(err)
	}
}
