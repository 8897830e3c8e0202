// cmd/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"go_vocab_memorize/internal/apiclient"
	"go_vocab_memorize/internal/auth"
	"go_vocab_memorize/internal/config"
	"go_vocab_memorize/internal/model"
	"go_vocab_memorize/internal/session"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := buildLogger(tempLogger)
	slog.SetDefault(logger)

	slog.Info("Application starting...",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
	)

	// 1. IDプロバイダへログイン
	tokens := auth.NewKeycloakProvider(config.Cfg.Keycloak, nil, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err := tokens.Login(ctx, config.Cfg.Keycloak.Username, config.Cfg.Keycloak.Password)
	cancel()
	if err != nil {
		slog.Error("Login failed. Set APP_KEYCLOAK_USERNAME / APP_KEYCLOAK_PASSWORD.", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. ユーザー情報と出題アルゴリズムを表示 (失敗してもセッションは続行)
	api := apiclient.New(config.Cfg.API.BaseURL, tokens, logger)
	printUserSummary(api)

	// 3. 学習セッションの構築
	channel := session.NewStompChannel(config.Cfg.Memorization.WSURL, tokens, logger)
	presenter := newTerminalPresenter(os.Stdout)
	flipDuration := time.Duration(config.Cfg.Memorization.FlipDurationMs) * time.Millisecond
	sess := session.New(channel, presenter, flipDuration, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. キー入力の読み取り (f=めくる, y=正解, n=不正解, q=終了)
	go readKeys(runCtx, os.Stdin, sess, stop)

	// 5. セッション実行。接続エラーはここへ戻ってくる (自動再接続はしない)
	if err := sess.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, model.ErrConnection) {
			fmt.Println()
			fmt.Println("接続エラー: サーバーに接続できませんでした。")
			fmt.Println("再試行するにはアプリケーションをもう一度起動してください。")
		}
		slog.Error("Session finished with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Println("Session exiting")
}

// buildLogger は設定に基づいてslogロガーを初期化します (開発環境ではtint)
func buildLogger(tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}

func printUserSummary(api *apiclient.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := api.GetUserInfo(ctx)
	if err != nil {
		slog.Warn("Failed to fetch user info", slog.Any("error", err))
		return
	}
	fmt.Printf("ログイン中: %s (%s)\n", user.UserName, user.Login)

	algo, err := api.GetWeightAlgorithm(ctx)
	if err != nil {
		slog.Warn("Failed to fetch weight algorithm", slog.Any("error", err))
		return
	}
	fmt.Printf("出題アルゴリズム: %s\n", algo.CurrentAlgorithm.Name)
}

// readKeys は標準入力をセッションのイベントに変換します
func readKeys(ctx context.Context, r io.Reader, sess *session.Session, quit func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "y":
			sess.Answer(true)
		case "n":
			sess.Answer(false)
		case "", "f":
			sess.ToggleFlip()
		case "q":
			quit()
			return
		}
	}
}

// terminalPresenter はカードビューの端末実装です
type terminalPresenter struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalPresenter(out io.Writer) *terminalPresenter {
	return &terminalPresenter{out: out}
}

func (p *terminalPresenter) Render(view session.ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch view.Phase {
	case session.PhaseLoading:
		fmt.Fprintln(p.out, "読み込み中...")
	case session.PhaseConnectionError:
		fmt.Fprintln(p.out, "=== 接続エラー ===")
		if view.Err != nil {
			fmt.Fprintf(p.out, "%v\n", view.Err)
		}
	default:
		p.renderCard(view)
	}
}

func (p *terminalPresenter) renderCard(view session.ViewState) {
	card := view.Card
	if card == nil {
		return
	}

	fmt.Fprintln(p.out, strings.Repeat("-", 40))
	if !view.ShowDetail {
		// 裏面: 見出し語のみ
		fmt.Fprintf(p.out, "  %s\n", card.Input)
	} else {
		fmt.Fprintf(p.out, "  %s\n", card.Input)
		fmt.Fprintf(p.out, "  訳: %s\n", card.Translate)
		if len(card.Tags) > 0 {
			labels := make([]string, 0, len(card.Tags))
			for _, tag := range card.Tags {
				labels = append(labels, tag.Tag)
			}
			fmt.Fprintf(p.out, "  タグ: %s\n", strings.Join(labels, ", "))
		}
		for _, example := range card.ExampleTexts() {
			fmt.Fprintf(p.out, "  例: %s\n", example)
		}
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 40))

	if view.ControlsEnabled {
		fmt.Fprintln(p.out, "[Enter/f] めくる  [y] 正解  [n] 不正解  [q] 終了")
	} else if view.AwaitingServer {
		fmt.Fprintln(p.out, "... 次のカードを待っています ...")
	}
}

func (p *terminalPresenter) Notify(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "⚠ %s\n", message)
}
