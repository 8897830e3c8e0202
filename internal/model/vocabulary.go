// internal/model/vocabulary.go
package model

// VocabularyInput は語彙エントリの詳細です (一覧・詳細取得用)
type VocabularyInput struct {
	ID        int64             `json:"id"`
	Input     string            `json:"input"`
	Translate string            `json:"translate"`
	Examples  []*string         `json:"examples"`
	Tags      []Tag             `json:"tags"`
	Relations []VocabularyInput `json:"relations,omitempty"` // 関連語 (ネストは1段のみ)
}

// CreateInputRequest は語彙エントリ作成リクエストDTO
type CreateInputRequest struct {
	Input     string               `json:"input" validate:"required"`
	Translate string               `json:"translate" validate:"required"`
	Examples  []string             `json:"examples"`
	Tags      []Tag                `json:"tags"`
	Relations []CreateInputRequest `json:"relations,omitempty"`
}

// UpdateInputRequest は語彙エントリ更新リクエストDTO (全体更新)
type UpdateInputRequest struct {
	ID        int64    `json:"id" validate:"required"`
	Input     string   `json:"input" validate:"required"`
	Translate string   `json:"translate" validate:"required"`
	Examples  []string `json:"examples"`
	Tags      []Tag    `json:"tags"`
}

// SearchParams は語彙検索のクエリパラメータ
type SearchParams struct {
	Search string   // 見出し語・訳語の部分一致
	Tags   []string // 指定タグのいずれかを持つもの
}

// UserInfo はユーザー情報レスポンス
type UserInfo struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Login    string `json:"login"`
	Avatar   string `json:"avatar,omitempty"`
}

// WeightAlgorithm は出題の重み付けアルゴリズムの情報
type WeightAlgorithm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WeightAlgorithmInfo は現在のアルゴリズムと選択可能なアルゴリズムの一覧
type WeightAlgorithmInfo struct {
	CurrentAlgorithm    WeightAlgorithm   `json:"currentAlgorithm"`
	AvailableAlgorithms []WeightAlgorithm `json:"availableAlgorithms"`
}
