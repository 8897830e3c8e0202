// internal/session/animator.go
package session

import "time"

// animator はフリップアニメーションのタイマーを管理します。
// 合計時間 total を半分ずつに割り、中間点でカードの差し替え、終了で状態のリセットを行う
// イベントをステートマシンのイベントループへ送り込みます。
// タイマーのコールバックはイベントを投函するだけで、状態には触りません。
// 古くなったタイマーの発火は世代番号 (gen) でループ側が無視します。
type animator struct {
	mid *time.Timer
	end *time.Timer
}

func newAnimator() *animator {
	return &animator{}
}

// start は保留中のタイマーを必ず破棄してから新しい2つのタイマーを予約します。
// これにより、適用されるのは常に最新のカードだけになります。
func (a *animator) start(total time.Duration, gen uint64, post func(ev any)) {
	a.cancel()
	half := total / 2
	a.mid = time.AfterFunc(half, func() { post(animMidEvent{gen: gen}) })
	a.end = time.AfterFunc(total, func() { post(animEndEvent{gen: gen}) })
}

// cancel は保留中のタイマーを停止します。破棄後の発火は世代チェックで無害化されます。
func (a *animator) cancel() {
	if a.mid != nil {
		a.mid.Stop()
		a.mid = nil
	}
	if a.end != nil {
		a.end.Stop()
		a.end = nil
	}
}
