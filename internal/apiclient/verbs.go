// internal/apiclient/verbs.go
package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"go_vocab_memorize/internal/model"
)

// ListIrregularVerbs は不規則動詞の一覧を取得します
func (c *Client) ListIrregularVerbs(ctx context.Context) ([]model.IrregularVerb, error) {
	var verbs []model.IrregularVerb
	if err := c.do(ctx, http.MethodGet, "/irregular-verb", nil, nil, &verbs); err != nil {
		return nil, err
	}
	return verbs, nil
}

// GetIrregularVerb は不規則動詞を1件取得します
func (c *Client) GetIrregularVerb(ctx context.Context, id int64) (*model.IrregularVerb, error) {
	var verb model.IrregularVerb
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/irregular-verb/%d", id), nil, nil, &verb); err != nil {
		return nil, err
	}
	return &verb, nil
}

// CreateTest は指定問題数のテスト用の動詞セットを取得します
func (c *Client) CreateTest(ctx context.Context, questionCount int) ([]model.IrregularVerb, error) {
	if questionCount <= 0 {
		return nil, model.NewAppError("VALIDATION_ERROR", "問題数は1以上で指定してください。", "questionCount", model.ErrInvalidInput)
	}
	var verbs []model.IrregularVerb
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/irregular-verb/test/%d", questionCount), nil, nil, &verbs); err != nil {
		return nil, err
	}
	return verbs, nil
}

// CheckAnswer は1問分の回答を採点します (正解なら true)
func (c *Client) CheckAnswer(ctx context.Context, req model.CheckAnswerRequest) (bool, error) {
	if err := c.validateRequest(req); err != nil {
		return false, err
	}
	var correct bool
	if err := c.do(ctx, http.MethodPost, "/irregular-verb/check-answer", nil, req, &correct); err != nil {
		return false, err
	}
	return correct, nil
}

// CheckAnswers はテスト全体をまとめて採点します
func (c *Client) CheckAnswers(ctx context.Context, reqs []model.CheckAnswerRequest) ([]model.VerbAnswerResult, error) {
	for _, req := range reqs {
		if err := c.validateRequest(req); err != nil {
			return nil, err
		}
	}
	var results []model.VerbAnswerResult
	if err := c.do(ctx, http.MethodPost, "/irregular-verb/check-answer/check-test", nil, reqs, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateProgress は指定問題数の学習進捗を開始し、進捗IDを返します
func (c *Client) CreateProgress(ctx context.Context, questionCount int) (int64, error) {
	if questionCount <= 0 {
		return 0, model.NewAppError("VALIDATION_ERROR", "問題数は1以上で指定してください。", "questionCount", model.ErrInvalidInput)
	}
	var progressID int64
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/irregular-verb/progress/%d", questionCount), nil, nil, &progressID); err != nil {
		return 0, err
	}
	return progressID, nil
}

// ListProgress はユーザーの学習進捗一覧を取得します
func (c *Client) ListProgress(ctx context.Context) ([]model.VerbProgress, error) {
	var progresses []model.VerbProgress
	if err := c.do(ctx, http.MethodGet, "/irregular-verb/progress", nil, nil, &progresses); err != nil {
		return nil, err
	}
	return progresses, nil
}

// GetProgress は進捗に含まれる動詞セットを取得します
func (c *Client) GetProgress(ctx context.Context, progressID int64) ([]model.IrregularVerb, error) {
	var verbs []model.IrregularVerb
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/irregular-verb/progress/%d", progressID), nil, nil, &verbs); err != nil {
		return nil, err
	}
	return verbs, nil
}

// GetProgressHistory は進捗に対するテスト受験履歴の一覧を取得します
func (c *Client) GetProgressHistory(ctx context.Context, progressID int64) ([]model.VerbProgressHistory, error) {
	var history []model.VerbProgressHistory
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/irregular-verb/progress/history/%d", progressID), nil, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// GetProgressHistoryAnswers は履歴1件分の採点済み回答を取得します
func (c *Client) GetProgressHistoryAnswers(ctx context.Context, historyID int64) ([]model.VerbTestAnswer, error) {
	var answers []model.VerbTestAnswer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/irregular-verb/progress/history/answers/%d", historyID), nil, nil, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// CheckProgressAnswer は進捗テスト中の1問分の回答を採点します (正解なら true)
func (c *Client) CheckProgressAnswer(ctx context.Context, ans model.ProgressAnswer) (bool, error) {
	if err := c.validateRequest(ans); err != nil {
		return false, err
	}
	var correct bool
	if err := c.do(ctx, http.MethodPost, "/irregular-verb/progress", nil, ans, &correct); err != nil {
		return false, err
	}
	return correct, nil
}

// FinishProgressTest は進捗テストを終了し、全問の採点結果を返します
func (c *Client) FinishProgressTest(ctx context.Context, progressID int64, answers []model.ProgressAnswer) (*model.VerbTestResult, error) {
	for _, ans := range answers {
		if err := c.validateRequest(ans); err != nil {
			return nil, err
		}
	}
	var result model.VerbTestResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/irregular-verb/progress/finish-progress/%d", progressID), nil, answers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
