// internal/session/channel.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"go_vocab_memorize/internal/auth"
	"go_vocab_memorize/internal/model"
	"go_vocab_memorize/internal/webutil"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/go-stomp/stomp/v3"
)

// STOMPの宛先。バックエンドのメッセージングエンドポイントの契約に合わせる。
const (
	DestStartSession = "/app/start-session"
	DestSubmitAnswer = "/app/submit-answer"
	DestNextInput    = "/user/queue/next-input"
)

// Inbound はチャネルからステートマシンへ渡す受信イベントです。
// Err が nil なら Card が設定されています。Fatal な Err はセッションにとって致命的で、
// それ以外の Err (ペイロード解析失敗など) はカード1枚分だけ無視できます。
type Inbound struct {
	Card  *model.Card
	Err   error
	Fatal bool
}

// Channel は学習バックエンドへのメッセージング接続を1本所有します。
// 再接続・再送は行いません。失敗は一度だけ報告され、やり直しはチャネルの再構築で行います。
type Channel interface {
	Connect(ctx context.Context) (<-chan Inbound, error)
	StartSession() error
	SubmitAnswer(sub model.AnswerSubmission) error
	Close() error
}

// StompChannel はWebSocket上のSTOMP 1.2によるChannel実装です
type StompChannel struct {
	wsURL  string
	tokens auth.TokenProvider
	logger *slog.Logger

	mu     sync.Mutex
	ws     *websocket.Conn
	stomp  *stomp.Conn
	closed bool
}

func NewStompChannel(wsURL string, tokens auth.TokenProvider, logger *slog.Logger) *StompChannel {
	return &StompChannel{
		wsURL:  wsURL,
		tokens: tokens,
		logger: logger,
	}
}

// Connect は資格情報を更新してからWebSocketを開き、STOMPハンドシェイクと
// 2つの購読 (セッション開始・次カード) を確立します。
func (c *StompChannel) Connect(ctx context.Context) (<-chan Inbound, error) {
	if _, err := c.tokens.Refresh(ctx); err != nil {
		return nil, model.NewAppError("SESSION_AUTH_ERROR", "認証に失敗しました。再ログインしてください。", "", model.ErrConnection)
	}
	token := c.tokens.Token()
	if token == "" {
		return nil, model.NewAppError("SESSION_AUTH_ERROR", "アクセストークンがありません。", "", model.ErrConnection)
	}

	dialURL := c.wsURL + "?access_token=" + url.QueryEscape(token)
	ws, _, err := websocket.Dial(ctx, dialURL, nil)
	if err != nil {
		c.logger.Warn("WebSocket dial failed", slog.Any("error", err))
		return nil, model.NewAppError("SESSION_CONNECT_ERROR", "サーバーに接続できませんでした。", "", model.ErrConnection)
	}

	// STOMPはnet.Conn相当を要求するため、WebSocketをテキストフレームのストリームとして被せる。
	// ctxはダイヤルのタイムアウト専用で、確立後の接続の寿命はClose()が管理するので
	// ここではBackgroundを渡す (ctxを渡すとダイヤル側のキャンセルで接続ごと切れてしまう)。
	netConn := websocket.NetConn(context.Background(), ws, websocket.MessageText)
	stompConn, err := stomp.Connect(netConn, stomp.ConnOpt.HeartBeat(0, 0))
	if err != nil {
		ws.Close(websocket.StatusProtocolError, "stomp handshake failed")
		c.logger.Warn("STOMP handshake failed", slog.Any("error", err))
		return nil, model.NewAppError("SESSION_HANDSHAKE_ERROR", "セッションの確立に失敗しました。", "", model.ErrConnection)
	}

	startSub, err := stompConn.Subscribe(DestStartSession, stomp.AckAuto)
	if err != nil {
		stompConn.Disconnect()
		ws.Close(websocket.StatusProtocolError, "subscribe failed")
		return nil, model.NewAppError("SESSION_SUBSCRIBE_ERROR", "セッションの購読に失敗しました。", "", model.ErrConnection)
	}
	nextSub, err := stompConn.Subscribe(DestNextInput, stomp.AckAuto)
	if err != nil {
		stompConn.Disconnect()
		ws.Close(websocket.StatusProtocolError, "subscribe failed")
		return nil, model.NewAppError("SESSION_SUBSCRIBE_ERROR", "セッションの購読に失敗しました。", "", model.ErrConnection)
	}

	c.mu.Lock()
	c.ws = ws
	c.stomp = stompConn
	c.closed = false
	c.mu.Unlock()

	inbound := make(chan Inbound, 8)
	go c.pump(startSub.C, nextSub.C, inbound)

	c.logger.Info("Session channel connected", slog.String("url", c.wsURL))
	return inbound, nil
}

// pump は2つの購読を1本の受信チャネルに束ねます。
// 到着順はトランスポートのまま信頼し、並べ替えやバッファリングはしません。
func (c *StompChannel) pump(startC, nextC <-chan *stomp.Message, inbound chan<- Inbound) {
	defer close(inbound)
	for {
		var msg *stomp.Message
		var ok bool
		select {
		case msg, ok = <-startC:
		case msg, ok = <-nextC:
		}

		if !ok || msg == nil {
			inbound <- Inbound{
				Err:   model.NewAppError("SESSION_CLOSED", "サーバーとの接続が切断されました。", "", model.ErrConnection),
				Fatal: true,
			}
			return
		}
		if msg.Err != nil {
			c.logger.Warn("Subscription reported error", slog.Any("error", msg.Err))
			inbound <- Inbound{
				Err:   model.NewAppError("SESSION_CLOSED", "サーバーとの接続が切断されました。", "", model.ErrConnection),
				Fatal: true,
			}
			return
		}

		card, err := decodeCard(msg.Body)
		if err != nil {
			c.logger.Warn("Failed to decode card payload", slog.Any("error", err), slog.String("destination", msg.Destination))
			inbound <- Inbound{Err: err}
			continue
		}
		inbound <- Inbound{Card: card}
	}
}

// StartSession は最初のカードを要求する制御メッセージを送信します (ボディは空)
func (c *StompChannel) StartSession() error {
	return c.send(DestStartSession, []byte("{}"))
}

// SubmitAnswer は回答をバックエンドへ送信します
func (c *StompChannel) SubmitAnswer(sub model.AnswerSubmission) error {
	if err := webutil.Validator.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return webutil.NewValidationErrorResponse(verrs)
		}
		return model.NewAppError("VALIDATION_ERROR", "回答データの検証に失敗しました。", "", model.ErrInvalidInput)
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return model.NewAppError("SESSION_ENCODE_ERROR", "回答データの生成に失敗しました。", "", err)
	}
	return c.send(DestSubmitAnswer, body)
}

func (c *StompChannel) send(destination string, body []byte) error {
	c.mu.Lock()
	stompConn := c.stomp
	closed := c.closed
	c.mu.Unlock()

	// 未接続での送信は呼び出し側のバグ (ステートマシンはConnect完了前にsendしない)
	if stompConn == nil || closed {
		return model.NewAppError("SESSION_NOT_CONNECTED", "セッションが接続されていません。", "", model.ErrNotConnected)
	}

	if err := stompConn.Send(destination, "application/json", body); err != nil {
		c.logger.Warn("Failed to send message", slog.String("destination", destination), slog.Any("error", err))
		return model.NewAppError("SESSION_SEND_ERROR", "メッセージの送信に失敗しました。", "", err)
	}
	return nil
}

// Close は接続と購読を解放します。冪等で、未接続でも安全に呼べます。
func (c *StompChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.stomp != nil {
		// 切断済みソケット上のDISCONNECT失敗は想定内なのでログのみ
		if err := c.stomp.Disconnect(); err != nil {
			c.logger.Debug("STOMP disconnect returned error", slog.Any("error", err))
		}
		c.stomp = nil
	}
	if c.ws != nil {
		c.ws.Close(websocket.StatusNormalClosure, "session closed")
		c.ws = nil
	}

	c.logger.Info("Session channel closed")
	return nil
}

// decodeCard は受信ペイロードを検証付きでCardにデコードします。
// ステートマシンに不正なデータを見せないための境界。
func decodeCard(body []byte) (*model.Card, error) {
	var card model.Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, model.NewAppError("PAYLOAD_DECODE_ERROR", "受信データの解析に失敗しました。", "", model.ErrInvalidInput)
	}
	if err := webutil.Validator.Struct(&card); err != nil {
		return nil, model.NewAppError("PAYLOAD_INVALID", "受信データが不正です。", "", model.ErrInvalidInput)
	}
	return &card, nil
}
