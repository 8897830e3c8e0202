// internal/session/channel_test.go
package session

import (
	"context"
	"testing"
	"time"

	"go_vocab_memorize/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokenProvider はテスト用の固定トークン
type staticTokenProvider struct {
	token string
}

func (p *staticTokenProvider) Token() string { return p.token }

func (p *staticTokenProvider) IsExpiringSoon(_ time.Duration) bool { return false }

func (p *staticTokenProvider) Refresh(_ context.Context) (bool, error) { return false, nil }

// --- Test decodeCard ---

func Test_decodeCard(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, card *model.Card)
	}{
		{
			name: "正常系: 全フィールドあり",
			body: `{"id":10,"input":"run out of","translate":"使い果たす","examples":["We ran out of milk.",null],"tags":[{"tag":"phrasal verb"}]}`,
			check: func(t *testing.T, card *model.Card) {
				assert.Equal(t, int64(10), card.ID)
				assert.Equal(t, "run out of", card.Input)
				assert.Equal(t, []string{"We ran out of milk."}, card.ExampleTexts())
				require.Len(t, card.Tags, 1)
				assert.Equal(t, model.TagGroupPartOfSpeech, card.Tags[0].Group())
			},
		},
		{
			name: "正常系: 任意フィールド省略",
			body: `{"id":11,"input":"deliberate"}`,
			check: func(t *testing.T, card *model.Card) {
				assert.Equal(t, int64(11), card.ID)
				assert.Empty(t, card.ExampleTexts())
			},
		},
		{
			name:    "異常系: JSONが壊れている",
			body:    `{"id":`,
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "異常系: idなし",
			body:    `{"input":"deliberate"}`,
			wantErr: model.ErrInvalidInput,
		},
		{
			name:    "異常系: 見出し語なし",
			body:    `{"id":12}`,
			wantErr: model.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := decodeCard([]byte(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, card)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, card)
			tt.check(t, card)
		})
	}
}

// --- Test StompChannel (接続前後のガード) ---

func Test_StompChannel_SendBeforeConnect(t *testing.T) {
	ch := NewStompChannel("ws://localhost:9/ws-memorization", &staticTokenProvider{token: "t"}, testLogger())

	// 未接続チャネルへの送信は呼び出し側のバグとして報告される
	err := ch.StartSession()
	assert.ErrorIs(t, err, model.ErrNotConnected)

	err = ch.SubmitAnswer(model.AnswerSubmission{InputID: 1, IsCorrect: true})
	assert.ErrorIs(t, err, model.ErrNotConnected)
}

func Test_StompChannel_SubmitAnswerValidation(t *testing.T) {
	ch := NewStompChannel("ws://localhost:9/ws-memorization", &staticTokenProvider{token: "t"}, testLogger())

	// inputIdなしの回答は送信前に弾かれる (接続チェックより先)
	err := ch.SubmitAnswer(model.AnswerSubmission{IsCorrect: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func Test_StompChannel_CloseIsIdempotent(t *testing.T) {
	ch := NewStompChannel("ws://localhost:9/ws-memorization", &staticTokenProvider{token: "t"}, testLogger())

	assert.NoError(t, ch.Close())
	assert.NoError(t, ch.Close())
}

func Test_StompChannel_ConnectWithoutToken(t *testing.T) {
	ch := NewStompChannel("ws://localhost:9/ws-memorization", &staticTokenProvider{token: ""}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// トークンが空のままでは接続を試みない
	_, err := ch.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConnection)
}
