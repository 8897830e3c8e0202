// internal/session/animator_test.go
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectEvents は一定時間内に投函されたイベントを回収します
func collectEvents(events <-chan any, wait time.Duration) []any {
	deadline := time.After(wait)
	var got []any
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
}

func Test_animator_MidThenEnd(t *testing.T) {
	a := newAnimator()
	defer a.cancel()

	events := make(chan any, 4)
	post := func(ev any) { events <- ev }

	a.start(40*time.Millisecond, 7, post)

	got := collectEvents(events, 200*time.Millisecond)
	require.Len(t, got, 2, "exactly one midpoint and one end event")

	mid, ok := got[0].(animMidEvent)
	require.True(t, ok, "first event must be the midpoint")
	assert.Equal(t, uint64(7), mid.gen)

	end, ok := got[1].(animEndEvent)
	require.True(t, ok, "second event must be the end")
	assert.Equal(t, uint64(7), end.gen)
}

func Test_animator_CancelSuppressesBothTimers(t *testing.T) {
	a := newAnimator()

	events := make(chan any, 4)
	a.start(40*time.Millisecond, 1, func(ev any) { events <- ev })
	a.cancel()

	got := collectEvents(events, 120*time.Millisecond)
	assert.Empty(t, got, "cancelled timers must not fire")
}

func Test_animator_RestartReplacesPendingTimers(t *testing.T) {
	a := newAnimator()
	defer a.cancel()

	events := make(chan any, 8)
	post := func(ev any) { events <- ev }

	// すぐに引き直す: 最初の世代のタイマーは破棄される
	a.start(40*time.Millisecond, 1, post)
	a.start(40*time.Millisecond, 2, post)

	got := collectEvents(events, 200*time.Millisecond)
	require.Len(t, got, 2)
	for _, ev := range got {
		switch ev := ev.(type) {
		case animMidEvent:
			assert.Equal(t, uint64(2), ev.gen)
		case animEndEvent:
			assert.Equal(t, uint64(2), ev.gen)
		default:
			t.Fatalf("unexpected event type: %T", ev)
		}
	}
}

func Test_animator_CancelIsIdempotent(t *testing.T) {
	a := newAnimator()
	a.cancel() // 未開始でも安全
	a.start(20*time.Millisecond, 1, func(any) {})
	a.cancel()
	a.cancel()
}
