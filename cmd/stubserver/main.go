// cmd/stubserver/main.go
//
// ローカル開発用のスタブ学習バックエンドを起動します。
// 固定デッキを契約どおりのワイヤーフォーマットで配るだけで、本物のバックエンドではありません。
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_vocab_memorize/internal/config"
	"go_vocab_memorize/internal/model"
	"go_vocab_memorize/internal/stubserver"
)

func main() {
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	server := stubserver.New(sampleDeck(), logger)

	httpServer := &http.Server{
		Addr:    config.Cfg.Stub.Port,
		Handler: server.Router(config.Cfg.CORS),
	}

	// Graceful Shutdown
	go func() {
		slog.Info("Stub server starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Stub server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down stub server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Stub server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.Println("Stub server exiting")
}

func strPtr(s string) *string { return &s }

// sampleDeck はオフライン開発用の小さな固定デッキです
func sampleDeck() []model.Card {
	return []model.Card{
		{
			ID:        1,
			Input:     "run out of",
			Translate: "〜を使い果たす",
			Examples:  []*string{strPtr("We've run out of milk."), nil},
			Tags:      []model.Tag{{Tag: "phrasal verb"}, {Tag: "high-priority"}},
		},
		{
			ID:        2,
			Input:     "deliberate",
			Translate: "意図的な",
			Examples:  []*string{strPtr("It was a deliberate attempt to mislead us.")},
			Tags:      []model.Tag{{Tag: "adj"}, {Tag: "mid-priority"}},
		},
		{
			ID:        3,
			Input:     "nevertheless",
			Translate: "それにもかかわらず",
			Examples:  []*string{},
			Tags:      []model.Tag{{Tag: "adverb"}},
		},
	}
}
