// internal/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go_vocab_memorize/internal/auth"
	"go_vocab_memorize/internal/model"

	"github.com/google/uuid"
)

// Client はRESTバックエンドへの薄いリクエストラッパーです。
// リクエストごとに「使う前にリフレッシュ」でBearerトークンを付与し、
// `{ "data": ... }` エンベロープを剥がして返します。
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenProvider
	logger  *slog.Logger
	traceID string // セッション単位の相関ID (X-Trace-Idヘッダー)
}

func New(baseURL string, tokens auth.TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		logger:  logger,
		traceID: uuid.NewString(),
	}
}

// envelope はバックエンドの標準レスポンス形式
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do はリクエストを実行し、エンベロープを外した data を out にデコードします。
// out が nil の場合はレスポンスボディを読み捨てます。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if _, err := c.tokens.Refresh(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return model.NewAppError("REQUEST_ENCODE_ERROR", "リクエストの生成に失敗しました。", "", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return model.NewAppError("REQUEST_ERROR", "リクエストの生成に失敗しました。", "", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req)

	c.logger.Debug("API request", slog.String("method", method), slog.String("url", reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NewAppError("API_CONNECTION_ERROR", "サーバーに接続できませんでした。", "", model.ErrConnection)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.NewAppError("RESPONSE_DECODE_ERROR", "レスポンスの解析に失敗しました。", "", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return model.NewAppError("RESPONSE_DECODE_ERROR", "レスポンスの解析に失敗しました。", "", err)
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Trace-Id", c.traceID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// errorFromResponse はHTTPステータスをアプリケーションエラーにマッピングします
func (c *Client) errorFromResponse(resp *http.Response) error {
	// バックエンドが返すエラーメッセージがあれば利用する
	message := ""
	var apiErr model.APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		message = apiErr.Error.Message
	}
	if message == "" {
		message = fmt.Sprintf("サーバーがエラーを返しました (HTTP %d)。", resp.StatusCode)
	}

	sentinel := mapStatusCodeToError(resp.StatusCode)
	c.logger.Warn("API request failed",
		slog.Int("status", resp.StatusCode),
		slog.String("message", message),
	)
	return model.NewAppError("API_ERROR", message, "", sentinel)
}

// mapStatusCodeToError はHTTPステータスコードをsentinelエラーに対応付けます
func mapStatusCodeToError(status int) error {
	switch status {
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusBadRequest:
		return model.ErrInvalidInput
	case http.StatusUnauthorized:
		return model.ErrUnauthorized
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusConflict:
		return model.ErrConflict
	default:
		return model.ErrInternalServer
	}
}

// IsNotFound は呼び出し側での判定用ヘルパー
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
