// internal/session/view.go
package session

import "go_vocab_memorize/internal/model"

// Phase は学習セッションの状態です
type Phase int

const (
	PhaseLoading         Phase = iota // 最初のカード待ち
	PhaseReady                        // カード表示中・操作可能
	PhaseAwaitingAnswer               // 回答送信済み・次カード待ち
	PhaseAnimating                    // フリップアニメーション進行中
	PhaseConnectionError              // 接続失敗 (セッション再構築でのみ抜けられる)
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseAnimating:
		return "animating"
	case PhaseConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// ViewState はカードビューが描画に使う派生状態です。
// Card はアニメーションの段階に応じて current か previous のどちらか一方になります。
type ViewState struct {
	Phase           Phase
	Card            *model.Card
	ShowDetail      bool // 表面(訳・タグ・例文)を表示中か。falseなら裏面(見出し語のみ)
	AwaitingServer  bool
	Animating       bool
	ControlsEnabled bool
	Err             error // PhaseConnectionError のときのみ設定される
}

// Presenter はカードビューの描画境界です。
// Render は状態遷移のたびに呼ばれ、Notify は回復可能なエラーの通知に使われます。
type Presenter interface {
	Render(view ViewState)
	Notify(message string)
}
