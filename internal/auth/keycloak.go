// internal/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go_vocab_memorize/internal/config"
	"go_vocab_memorize/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway は「間もなく期限切れ」と判定する猶予時間です。
// 元のフロントエンドの keycloak.updateToken(30) に合わせて30秒。
const DefaultLeeway = 30 * time.Second

// TokenProvider はIDプロバイダが発行するBearerトークンを提供します。
// 利用側は「使う前にRefresh」の契約に従うこと (IsExpiringSoon -> Refresh -> Token)。
type TokenProvider interface {
	Token() string
	IsExpiringSoon(leeway time.Duration) bool
	Refresh(ctx context.Context) (bool, error)
}

// tokenResponse はKeycloakトークンエンドポイントのレスポンス
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// KeycloakProvider はKeycloakのトークンエンドポイントに対するTokenProvider実装です。
// トークンはプロセス全体で共有される資源なのでミューテックスで保護します。
// 二重リフレッシュはKeycloak側の冪等なリフレッシュ動作で吸収されます。
type KeycloakProvider struct {
	tokenURL string
	clientID string
	http     *http.Client
	logger   *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func NewKeycloakProvider(cfg config.KeycloakConfig, httpClient *http.Client, logger *slog.Logger) *KeycloakProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeycloakProvider{
		tokenURL: fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
			strings.TrimRight(cfg.URL, "/"), cfg.Realm),
		clientID: cfg.ClientID,
		http:     httpClient,
		logger:   logger,
	}
}

// Login はDirect Access Grant (passwordグラント) で初回のトークンを取得します
func (p *KeycloakProvider) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return model.NewAppError("AUTH_INVALID_CREDENTIALS", "ユーザー名とパスワードを指定してください。", "", model.ErrInvalidInput)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", p.clientID)
	form.Set("username", username)
	form.Set("password", password)

	tok, err := p.requestToken(ctx, form)
	if err != nil {
		return err
	}

	p.storeToken(tok)
	p.logger.Info("Logged in to identity provider", slog.String("token_url", p.tokenURL))
	return nil
}

// Refresh はトークンが期限切れ間近の場合のみリフレッシュします。
// リフレッシュ不要だった場合は (false, nil) を返します。
func (p *KeycloakProvider) Refresh(ctx context.Context) (bool, error) {
	if !p.IsExpiringSoon(DefaultLeeway) {
		return false, nil
	}

	p.mu.Lock()
	refreshToken := p.refreshToken
	p.mu.Unlock()

	if refreshToken == "" {
		return false, model.NewAppError("AUTH_NOT_LOGGED_IN", "ログインしていません。", "", model.ErrUnauthorized)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", p.clientID)
	form.Set("refresh_token", refreshToken)

	tok, err := p.requestToken(ctx, form)
	if err != nil {
		p.logger.Warn("Token refresh failed", slog.Any("error", err))
		return false, err
	}

	p.storeToken(tok)
	p.logger.Debug("Token refreshed before use")
	return true, nil
}

// Token は現在のアクセストークンを返します (未ログインなら空文字列)
func (p *KeycloakProvider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken
}

// IsExpiringSoon はアクセストークンが leeway 以内に期限切れになるかどうかを返します
func (p *KeycloakProvider) IsExpiringSoon(leeway time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken == "" {
		return true
	}
	if p.expiresAt.IsZero() {
		// 有効期限が読めないトークンは常にリフレッシュ対象とする
		return true
	}
	return time.Until(p.expiresAt) <= leeway
}

func (p *KeycloakProvider) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, model.NewAppError("AUTH_REQUEST_ERROR", "認証リクエストの生成に失敗しました。", "", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, model.NewAppError("AUTH_CONNECTION_ERROR", "認証サーバーに接続できませんでした。", "", model.ErrConnection)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("Token endpoint returned non-OK status", slog.Int("status", resp.StatusCode))
		return nil, model.NewAppError("AUTH_REJECTED", "認証に失敗しました。資格情報を確認してください。", "", model.ErrUnauthorized)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, model.NewAppError("AUTH_DECODE_ERROR", "認証レスポンスの解析に失敗しました。", "", err)
	}
	if tok.AccessToken == "" {
		return nil, model.NewAppError("AUTH_EMPTY_TOKEN", "認証サーバーからトークンが返されませんでした。", "", model.ErrUnauthorized)
	}
	return &tok, nil
}

func (p *KeycloakProvider) storeToken(tok *tokenResponse) {
	expiresAt := parseExpiry(tok.AccessToken)
	if expiresAt.IsZero() && tok.ExpiresIn > 0 {
		// exp クレームが読めない場合は expires_in から推定する
		expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	p.mu.Lock()
	p.accessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		p.refreshToken = tok.RefreshToken
	}
	p.expiresAt = expiresAt
	p.mu.Unlock()
}

// parseExpiry はアクセストークンの exp クレームを署名検証なしで読み取ります。
// 検証はサーバー側の仕事で、クライアントは期限判定にしか使わないため。
func parseExpiry(raw string) time.Time {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
