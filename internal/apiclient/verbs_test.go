// internal/apiclient/verbs_test.go
package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_vocab_memorize/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Client_CreateTest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/irregular-verb/test/2", r.URL.Path)
		respondData(w, []model.IrregularVerb{
			{ID: 1, Infinitive: "go", PastSimple: "went", PastParticiple: "gone"},
			{ID: 2, Infinitive: "see", PastSimple: "saw", PastParticiple: "seen"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	t.Run("正常系: 指定数の動詞セットを取得", func(t *testing.T) {
		verbs, err := c.CreateTest(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, verbs, 2)
		assert.Equal(t, "went", verbs[0].PastSimple)
	})

	t.Run("異常系: 問題数0はリクエスト前に弾かれる", func(t *testing.T) {
		_, err := c.CreateTest(context.Background(), 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_Client_CheckAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/irregular-verb/check-answer", r.URL.Path)
		respondData(w, true)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	t.Run("正常系: 正解判定", func(t *testing.T) {
		correct, err := c.CheckAnswer(context.Background(), model.CheckAnswerRequest{
			ID: 1, Infinitive: "go", PastSimple: "went", PastParticiple: "gone",
		})
		require.NoError(t, err)
		assert.True(t, correct)
	})

	t.Run("異常系: idなしはリクエスト前に弾かれる", func(t *testing.T) {
		_, err := c.CheckAnswer(context.Background(), model.CheckAnswerRequest{Infinitive: "go"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_Client_CreateProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/irregular-verb/progress/10", r.URL.Path)
		respondData(w, int64(77))
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	t.Run("正常系: 進捗が作成され進捗IDが返る", func(t *testing.T) {
		progressID, err := c.CreateProgress(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(77), progressID)
	})

	t.Run("異常系: 問題数0はリクエスト前に弾かれる", func(t *testing.T) {
		_, err := c.CreateProgress(context.Background(), 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_Client_ListProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/irregular-verb/progress", r.URL.Path)
		respondData(w, []model.VerbProgress{
			{ProgressID: 1, DateOfStart: "2026-08-01", DateOfFinish: "2026-08-10", Status: model.ProgressStatusFinished},
			{ProgressID: 2, DateOfStart: "2026-08-20", Status: model.ProgressStatusInProcess},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())
	progresses, err := c.ListProgress(context.Background())
	require.NoError(t, err)

	require.Len(t, progresses, 2)
	assert.Equal(t, model.ProgressStatusFinished, progresses[0].Status)
	assert.Equal(t, model.ProgressStatusInProcess, progresses[1].Status)
	assert.Empty(t, progresses[1].DateOfFinish)
}

func Test_Client_GetProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/irregular-verb/progress/7", r.URL.Path)
		respondData(w, []model.IrregularVerb{
			{ID: 1, Infinitive: "go", PastSimple: "went", PastParticiple: "gone", TranslationRu: "идти"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())
	verbs, err := c.GetProgress(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, verbs, 1)
	assert.Equal(t, "идти", verbs[0].TranslationRu)
}

func Test_Client_GetProgressHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/irregular-verb/progress/history/7":
			respondData(w, []model.VerbProgressHistory{
				{ID: 31, TestStatus: "SUCCEED", Percentage: 90},
				{ID: 32, TestStatus: "FAILED", Percentage: 40},
			})
		case "/irregular-verb/progress/history/answers/31":
			respondData(w, []model.VerbTestAnswer{
				{
					TranslationRu:       "идти",
					Infinitive:          "go",
					InspectedInfinitive: "go",
					PastSimple:          "went",
					InspectedPastSimple: "goed",
					IsInfinitiveCorrect: true,
					IsPastSimpleCorrect: false,
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	history, err := c.GetProgressHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "SUCCEED", history[0].TestStatus)
	assert.InDelta(t, 40.0, history[1].Percentage, 0.001)

	answers, err := c.GetProgressHistoryAnswers(context.Background(), history[0].ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.True(t, answers[0].IsInfinitiveCorrect)
	assert.Equal(t, "goed", answers[0].InspectedPastSimple)
	assert.False(t, answers[0].IsPastSimpleCorrect)
}

func Test_Client_CheckProgressAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/irregular-verb/progress", r.URL.Path)

		var ans model.ProgressAnswer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ans))
		assert.Equal(t, "идти", ans.TranslationRu)

		respondData(w, ans.PastSimple == "went")
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	t.Run("正常系: 正解判定", func(t *testing.T) {
		correct, err := c.CheckProgressAnswer(context.Background(), model.ProgressAnswer{
			TranslationRu: "идти", Infinitive: "go", PastSimple: "went", PastParticiple: "gone",
		})
		require.NoError(t, err)
		assert.True(t, correct)
	})

	t.Run("異常系: 出題キーなしはリクエスト前に弾かれる", func(t *testing.T) {
		_, err := c.CheckProgressAnswer(context.Background(), model.ProgressAnswer{Infinitive: "go"})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_Client_FinishProgressTest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/irregular-verb/progress/finish-progress/7", r.URL.Path)

		var answers []model.ProgressAnswer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&answers))
		require.Len(t, answers, 1)

		respondData(w, model.VerbTestResult{
			Percentage: 66.7,
			Answers: []model.VerbTestAnswer{
				{
					TranslationRu:           "идти",
					Infinitive:              "go",
					InspectedInfinitive:     "go",
					PastSimple:              "went",
					InspectedPastSimple:     "went",
					PastParticiple:          "gone",
					InspectedPastParticiple: "goed",
					IsInfinitiveCorrect:     true,
					IsPastSimpleCorrect:     true,
					IsPastParticipleCorrect: false,
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())

	t.Run("正常系: 採点結果が返る", func(t *testing.T) {
		result, err := c.FinishProgressTest(context.Background(), 7, []model.ProgressAnswer{
			{TranslationRu: "идти", Infinitive: "go", PastSimple: "went", PastParticiple: "goed"},
		})
		require.NoError(t, err)
		assert.InDelta(t, 66.7, result.Percentage, 0.001)
		require.Len(t, result.Answers, 1)
		assert.False(t, result.Answers[0].IsPastParticipleCorrect)
	})

	t.Run("異常系: 出題キーなしの回答が混ざっている", func(t *testing.T) {
		_, err := c.FinishProgressTest(context.Background(), 7, []model.ProgressAnswer{
			{Infinitive: "go"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_Client_CheckAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/irregular-verb/check-answer/check-test", r.URL.Path)
		respondData(w, []model.VerbAnswerResult{
			{ID: 1, IsInfinitiveCorrect: true, IsPastSimpleCorrect: true, IsPastParticipleCorrect: false},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{token: "t"}, testLogger())
	results, err := c.CheckAnswers(context.Background(), []model.CheckAnswerRequest{
		{ID: 1, Infinitive: "go", PastSimple: "went", PastParticiple: "goed"},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].IsPastSimpleCorrect)
	assert.False(t, results[0].IsPastParticipleCorrect)
}
