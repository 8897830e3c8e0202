// internal/session/machine.go
package session

import (
	"context"
	"log/slog"
	"time"

	"go_vocab_memorize/internal/config"
	"go_vocab_memorize/internal/model"
)

// イベントループが処理するイベント。
// ユーザー操作とタイマー発火はすべてここを通るため、状態の変更は常にRunゴルーチン上で起きる。
type answerEvent struct{ correct bool }
type toggleFlipEvent struct{}
type animMidEvent struct{ gen uint64 }
type animEndEvent struct{ gen uint64 }

// Session は1回の学習セッションのクライアント側状態を所有するステートマシンです。
//
//	Loading -> Ready -> AwaitingAnswer -> Animating -> Ready -> ...
//
// 接続エラーはどの状態からでも PhaseConnectionError へ遷移し、そこからはセッションの
// 再構築でしか抜けられません。current / previous / フラグ類を触るのは Run ゴルーチン
// だけなので、ロックは不要です。
type Session struct {
	ch           Channel
	presenter    Presenter
	logger       *slog.Logger
	flipDuration time.Duration

	events chan any

	// --- 以下は Run ゴルーチン専有 ---
	phase         Phase
	current       *model.Card
	previous      *model.Card // 回答アニメーション中のみ保持される直前のカード
	pending       *model.Card // 到着済みだがまだ表示していない次のカード
	flippedToBack bool        // true = 裏面(見出し語のみ)を表示
	connErr       error
	anim          *animator
	gen           uint64 // アニメーションの世代番号。新しい状態に入るたびに古いタイマーを無効化する
}

func New(ch Channel, presenter Presenter, flipDuration time.Duration, logger *slog.Logger) *Session {
	if flipDuration <= 0 {
		flipDuration = time.Duration(config.DefaultFlipDurationMs) * time.Millisecond
	}
	return &Session{
		ch:            ch,
		presenter:     presenter,
		logger:        logger,
		flipDuration:  flipDuration,
		events:        make(chan any, 16),
		phase:         PhaseLoading,
		flippedToBack: true, // 最初は裏面(見出し語のみ)から
		anim:          newAnimator(),
	}
}

// Answer はユーザーの正誤判定を投函します。Ready以外の状態では無視されます。
func (s *Session) Answer(correct bool) {
	s.post(answerEvent{correct: correct})
}

// ToggleFlip は表裏の切り替えを投函します。回答待ち・アニメーション中は無視されます。
func (s *Session) ToggleFlip() {
	s.post(toggleFlipEvent{})
}

// post はイベントループへノンブロッキングで投函します。
// ループが終了している場合にユーザー操作で固まらないよう、あふれたら捨てます。
func (s *Session) post(ev any) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("Event dropped: session loop is not consuming")
	}
}

// Run はチャネルを接続し、セッションが終わるまでイベントループを回します。
// 戻るときには必ずタイマーとチャネルを解放します。
func (s *Session) Run(ctx context.Context) error {
	defer s.anim.cancel()
	defer s.ch.Close()

	s.render() // 接続中のローディング表示

	inbound, err := s.ch.Connect(ctx)
	if err != nil {
		s.enterConnectionError(err)
		return err
	}

	if err := s.ch.StartSession(); err != nil {
		s.enterConnectionError(err)
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session cancelled", slog.String("phase", s.phase.String()))
			return ctx.Err()
		case in, ok := <-inbound:
			if !ok {
				err := model.NewAppError("SESSION_CLOSED", "サーバーとの接続が切断されました。", "", model.ErrConnection)
				s.enterConnectionError(err)
				return err
			}
			s.handleInbound(in)
			if s.phase == PhaseConnectionError {
				return s.connErr
			}
		case ev := <-s.events:
			s.handleEvent(ev)
		}
	}
}

func (s *Session) handleInbound(in Inbound) {
	if in.Err != nil {
		if in.Fatal {
			s.enterConnectionError(in.Err)
			return
		}
		// 解析失敗はそのカード1枚分だけ諦め、状態は進めない
		s.logger.Warn("Ignoring malformed payload", slog.Any("error", in.Err))
		s.presenter.Notify("受信データの解析に失敗しました。")
		return
	}

	switch s.phase {
	case PhaseLoading:
		// 最初のカード
		s.current = in.Card
		s.previous = nil
		s.flippedToBack = true
		s.phase = PhaseReady
		s.logger.Info("Initial card received", slog.Int64("card_id", in.Card.ID))
		s.render()

	case PhaseAwaitingAnswer:
		// 次カード到着: アニメーション開始。currentの差し替えは中間点まで行わない。
		s.pending = in.Card
		s.phase = PhaseAnimating
		s.gen++
		s.anim.start(s.flipDuration, s.gen, s.post)
		s.render()

	case PhaseAnimating:
		// 在飛行1件の不変条件の下では起きないはずだが、防御的に最新カードで引き直す
		s.logger.Warn("Card arrived mid-animation, rescheduling", slog.Int64("card_id", in.Card.ID))
		s.pending = in.Card
		s.gen++
		s.anim.start(s.flipDuration, s.gen, s.post)

	case PhaseReady:
		// 回答を伴わない通常更新
		s.anim.cancel()
		s.current = in.Card
		s.previous = nil
		s.flippedToBack = true
		s.render()

	case PhaseConnectionError:
		// 終端状態。以降の受信は無視する。
	}
}

func (s *Session) handleEvent(ev any) {
	switch ev := ev.(type) {
	case answerEvent:
		s.handleAnswer(ev.correct)

	case toggleFlipEvent:
		// 回答待ち・アニメーション中の切り替えは無効 (表示フラグへの影響なし)
		if s.phase != PhaseReady {
			return
		}
		s.flippedToBack = !s.flippedToBack
		s.render()

	case animMidEvent:
		if ev.gen != s.gen || s.phase != PhaseAnimating {
			return // 破棄済みタイマーの発火
		}
		// 中間点: 新しいカードに差し替え、裏面(見出し語のみ)を見せる
		s.current = s.pending
		s.flippedToBack = true
		s.render()

	case animEndEvent:
		if ev.gen != s.gen || s.phase != PhaseAnimating {
			return
		}
		// 終了: previousを破棄し、操作を再度有効にする
		s.previous = nil
		s.pending = nil
		s.phase = PhaseReady
		s.render()
	}
}

func (s *Session) handleAnswer(correct bool) {
	if s.phase != PhaseReady {
		return // 操作は無効化されているはず
	}
	if s.current == nil || s.current.ID == 0 {
		s.presenter.Notify("回答対象の単語がありません。")
		return
	}

	// currentをpreviousへ退避してから送信。アニメーションの前半はこのスナップショットを見せる。
	s.previous = s.current
	s.flippedToBack = true
	s.phase = PhaseAwaitingAnswer

	sub := model.AnswerSubmission{InputID: s.current.ID, IsCorrect: correct}
	if err := s.ch.SubmitAnswer(sub); err != nil {
		// 送信失敗: 巻き戻して同じカードに再回答できるようにする
		s.logger.Warn("Failed to submit answer", slog.Int64("card_id", s.current.ID), slog.Any("error", err))
		s.previous = nil
		s.phase = PhaseReady
		s.presenter.Notify("回答の送信に失敗しました。")
	} else {
		s.logger.Debug("Answer submitted", slog.Int64("card_id", sub.InputID), slog.Bool("is_correct", sub.IsCorrect))
	}
	s.render()
}

func (s *Session) enterConnectionError(err error) {
	s.anim.cancel()
	s.phase = PhaseConnectionError
	s.connErr = err
	s.logger.Error("Session entered connection error state", slog.Any("error", err))
	s.render()
}

// viewState は現在の状態から描画用のスナップショットを作ります。
// 表面(詳細)を見せている間はpreviousを優先する。裏面は常にcurrentの見出し語。
func (s *Session) viewState() ViewState {
	face := s.current
	if !s.flippedToBack && s.previous != nil {
		face = s.previous
	}
	awaiting := s.phase == PhaseAwaitingAnswer || s.phase == PhaseAnimating
	return ViewState{
		Phase:           s.phase,
		Card:            face,
		ShowDetail:      !s.flippedToBack,
		AwaitingServer:  awaiting,
		Animating:       s.phase == PhaseAnimating,
		ControlsEnabled: s.phase == PhaseReady,
		Err:             s.connErr,
	}
}

func (s *Session) render() {
	s.presenter.Render(s.viewState())
}
