// internal/apiclient/vocabulary.go
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go_vocab_memorize/internal/model"
	"go_vocab_memorize/internal/webutil"

	"github.com/go-playground/validator/v10"
)

// ListVocabulary は語彙エントリの一覧を取得します
func (c *Client) ListVocabulary(ctx context.Context) ([]model.VocabularyInput, error) {
	var inputs []model.VocabularyInput
	if err := c.do(ctx, http.MethodGet, "/vocabulary", nil, nil, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

// GetInput は語彙エントリを1件取得します (関連語も含む)
func (c *Client) GetInput(ctx context.Context, id int64) (*model.VocabularyInput, error) {
	var input model.VocabularyInput
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vocabulary/%d", id), nil, nil, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// CreateInput は語彙エントリを作成します
func (c *Client) CreateInput(ctx context.Context, req model.CreateInputRequest) (*model.VocabularyInput, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var created model.VocabularyInput
	if err := c.do(ctx, http.MethodPost, "/vocabulary", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateInput は語彙エントリを全体更新します
func (c *Client) UpdateInput(ctx context.Context, req model.UpdateInputRequest) (*model.VocabularyInput, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var updated model.VocabularyInput
	if err := c.do(ctx, http.MethodPut, "/vocabulary/input", nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SearchVocabulary は検索条件に一致する語彙エントリを取得します
func (c *Client) SearchVocabulary(ctx context.Context, params model.SearchParams) ([]model.VocabularyInput, error) {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if len(params.Tags) > 0 {
		query.Set("tags", strings.Join(params.Tags, ","))
	}

	var inputs []model.VocabularyInput
	if err := c.do(ctx, http.MethodGet, "/vocabulary/search", query, nil, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

// ListTags はユーザーの全タグを取得します
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.do(ctx, http.MethodGet, "/vocabulary/tags", nil, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetUserInfo はログイン中ユーザーの情報を取得します
func (c *Client) GetUserInfo(ctx context.Context) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWeightAlgorithm は出題アルゴリズムの現在値と選択肢を取得します
func (c *Client) GetWeightAlgorithm(ctx context.Context) (*model.WeightAlgorithmInfo, error) {
	var info model.WeightAlgorithmInfo
	if err := c.do(ctx, http.MethodGet, "/weight-algorithm", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetWeightAlgorithm は出題アルゴリズムを切り替えます
func (c *Client) SetWeightAlgorithm(ctx context.Context, name string) (*model.WeightAlgorithmInfo, error) {
	if name == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "アルゴリズム名を指定してください。", "name", model.ErrInvalidInput)
	}
	var info model.WeightAlgorithmInfo
	if err := c.do(ctx, http.MethodPut, "/weight-algorithm/"+url.PathEscape(name), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UploadVocabularyFile は語彙ファイルをmultipartでアップロードします
func (c *Client) UploadVocabularyFile(ctx context.Context, filename string, r io.Reader) error {
	if _, err := c.tokens.Refresh(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return model.NewAppError("REQUEST_ENCODE_ERROR", "アップロードデータの生成に失敗しました。", "", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.NewAppError("REQUEST_ENCODE_ERROR", "アップロードデータの生成に失敗しました。", "", err)
	}
	if err := mw.Close(); err != nil {
		return model.NewAppError("REQUEST_ENCODE_ERROR", "アップロードデータの生成に失敗しました。", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vocabulary/upload", &buf)
	if err != nil {
		return model.NewAppError("REQUEST_ERROR", "リクエストの生成に失敗しました。", "", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NewAppError("API_CONNECTION_ERROR", "サーバーに接続できませんでした。", "", model.ErrConnection)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// validateRequest は送信前にリクエストDTOを検証します
func (c *Client) validateRequest(req any) error {
	if err := webutil.Validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return webutil.NewValidationErrorResponse(verrs)
		}
		return model.NewAppError("VALIDATION_ERROR", "リクエストの検証に失敗しました。", "", model.ErrInvalidInput)
	}
	return nil
}
