// internal/stubserver/server.go
//
// 学習バックエンドのローカルスタブです。固定のデッキを契約どおりの
// ワイヤーフォーマット (WebSocket上のSTOMP 1.2) で配るだけのテストダブルで、
// 本物のバックエンドの設計ではありません。統合テストとオフライン開発用。
package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"go_vocab_memorize/internal/config"
	"go_vocab_memorize/internal/middleware"
	"go_vocab_memorize/internal/model"
	"go_vocab_memorize/internal/session"
	"go_vocab_memorize/internal/webutil"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/rs/cors"
)

// Server は /ws-memorization を提供するスタブ学習バックエンドです
type Server struct {
	deck   []model.Card
	logger *slog.Logger

	mu       sync.Mutex
	idx      int
	received []model.AnswerSubmission
}

func New(deck []model.Card, logger *slog.Logger) *Server {
	return &Server{
		deck:   deck,
		logger: logger,
	}
}

// Submissions はこれまでに受信した回答のコピーを返します (テストの検証用)
func (s *Server) Submissions() []model.AnswerSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AnswerSubmission, len(s.received))
	copy(out, s.received)
	return out
}

// Router はchiルーターを組み立てます
func (s *Server) Router(corsCfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   corsCfg.ExposedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Get("/ws-memorization", s.handleWS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// 本物のバックエンド同様、トークンはクエリパラメータで受け取る。
	// スタブなので検証は「空でないこと」だけ。
	token := r.URL.Query().Get("access_token")
	if token == "" {
		webutil.RespondWithJSON(w, http.StatusUnauthorized, model.APIErrorResponse{
			Error: model.ErrorDetail{Code: "UNAUTHORIZED", Message: "アクセストークンがありません。"},
		})
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("WebSocket accept failed", slog.Any("error", err))
		return
	}
	defer ws.Close(websocket.StatusNormalClosure, "stub closing")

	netConn := websocket.NetConn(r.Context(), ws, websocket.MessageText)
	s.serveStomp(netConn)
}

// serveStomp は1本の接続に対するSTOMPフレームループです
func (s *Server) serveStomp(conn io.ReadWriter) {
	reader := frame.NewReader(conn)
	writer := frame.NewWriter(conn)

	subs := map[string]string{} // destination -> subscription id
	msgSeq := 0

	for {
		f, err := reader.Read()
		if err != nil {
			return
		}
		if f == nil {
			continue // ハートビート
		}

		switch f.Command {
		case frame.CONNECT, frame.STOMP:
			resp := frame.New(frame.CONNECTED,
				frame.Version, "1.2",
				frame.HeartBeat, "0,0",
			)
			if err := writer.Write(resp); err != nil {
				return
			}

		case frame.SUBSCRIBE:
			dest := f.Header.Get(frame.Destination)
			id := f.Header.Get(frame.Id)
			subs[dest] = id
			s.logger.Debug("Stub subscription registered", slog.String("destination", dest))

		case frame.SEND:
			dest := f.Header.Get(frame.Destination)
			switch dest {
			case session.DestStartSession:
				msgSeq++
				if err := s.sendCard(writer, subs, session.DestStartSession, msgSeq); err != nil {
					return
				}
			case session.DestSubmitAnswer:
				var sub model.AnswerSubmission
				if err := json.Unmarshal(f.Body, &sub); err != nil {
					s.logger.Warn("Stub received malformed submission", slog.Any("error", err))
					continue
				}
				s.mu.Lock()
				s.received = append(s.received, sub)
				if len(s.deck) > 0 {
					s.idx = (s.idx + 1) % len(s.deck)
				}
				s.mu.Unlock()

				msgSeq++
				if err := s.sendCard(writer, subs, session.DestNextInput, msgSeq); err != nil {
					return
				}
			default:
				s.logger.Warn("Stub received SEND for unknown destination", slog.String("destination", dest))
			}

		case frame.DISCONNECT:
			if receipt := f.Header.Get(frame.Receipt); receipt != "" {
				writer.Write(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
			}
			return
		}
	}
}

// sendCard は現在のデッキ位置のカードをMESSAGEフレームで配信します。
// デッキが空の場合は何も配らない。
func (s *Server) sendCard(writer *frame.Writer, subs map[string]string, dest string, seq int) error {
	subID, ok := subs[dest]
	if !ok {
		s.logger.Warn("No subscription for destination, dropping card", slog.String("destination", dest))
		return nil
	}

	s.mu.Lock()
	if len(s.deck) == 0 {
		s.mu.Unlock()
		s.logger.Warn("Deck is empty, nothing to send", slog.String("destination", dest))
		return nil
	}
	card := s.deck[s.idx%len(s.deck)]
	s.mu.Unlock()

	body, err := json.Marshal(card)
	if err != nil {
		return err
	}

	msg := frame.New(frame.MESSAGE,
		frame.Destination, dest,
		frame.Subscription, subID,
		frame.MessageId, fmt.Sprintf("msg-%d", seq),
		frame.ContentType, "application/json",
	)
	msg.Body = body
	return writer.Write(msg)
}
