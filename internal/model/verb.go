// internal/model/verb.go
package model

// IrregularVerb は不規則動詞の3形と訳です
type IrregularVerb struct {
	ID             int64  `json:"id"`
	Infinitive     string `json:"infinitive"`
	PastSimple     string `json:"pastSimple"`
	PastParticiple string `json:"pastParticiple"`
	TranslationRu  string `json:"translationRu"`
}

// CheckAnswerRequest は1問分の回答チェックリクエストDTO。
// ユーザーが入力した pastSimple / pastParticiple を載せて送る。
type CheckAnswerRequest struct {
	ID             int64  `json:"id" validate:"required"`
	Infinitive     string `json:"infinitive" validate:"required"`
	PastSimple     string `json:"pastSimple"`
	PastParticiple string `json:"pastParticiple"`
}

// VerbAnswerResult はテスト採点での1問分の結果
type VerbAnswerResult struct {
	ID                      int64  `json:"id"`
	ProgressID              int64  `json:"progressId,omitempty"`
	Status                  string `json:"status,omitempty"`
	TestStatus              string `json:"testStatus,omitempty"`
	IsInfinitiveCorrect     bool   `json:"isInfinitiveCorrect"`
	IsPastSimpleCorrect     bool   `json:"isPastSimpleCorrect"`
	IsPastParticipleCorrect bool   `json:"isPastParticipleCorrect"`
}

// 学習進捗のステータス
const (
	ProgressStatusInProcess = "IN_PROCESS"
	ProgressStatusFinished  = "FINISHED"
)

// VerbProgress は不規則動詞の学習進捗1件です
type VerbProgress struct {
	ProgressID   int64  `json:"progressId"`
	DateOfStart  string `json:"dateOfStart"`
	DateOfFinish string `json:"dateOfFinish,omitempty"`
	Status       string `json:"status"` // IN_PROCESS / FINISHED
}

// VerbProgressHistory は進捗に対するテスト受験履歴1件です
type VerbProgressHistory struct {
	ID         int64   `json:"id"`
	TestStatus string  `json:"testStatus"` // SUCCEED / FAILED
	Percentage float64 `json:"percentage"`
}

// ProgressAnswer は進捗テストでの1問分の回答DTO。
// ロシア語訳を出題キーとして、ユーザーが入力した3形を載せて送る。
type ProgressAnswer struct {
	TranslationRu  string `json:"translationRu" validate:"required"`
	Infinitive     string `json:"infinitive"`
	PastSimple     string `json:"pastSimple"`
	PastParticiple string `json:"pastParticiple"`
}

// VerbTestAnswer は採点済みの1問分。正解の3形とユーザー入力 (inspected*) の両方を持つ。
type VerbTestAnswer struct {
	TranslationRu           string `json:"translationRu"`
	Infinitive              string `json:"infinitive"`
	InspectedInfinitive     string `json:"inspectedInfinitive"`
	PastSimple              string `json:"pastSimple"`
	InspectedPastSimple     string `json:"inspectedPastSimple"`
	PastParticiple          string `json:"pastParticiple"`
	InspectedPastParticiple string `json:"inspectedPastParticiple"`
	IsInfinitiveCorrect     bool   `json:"isInfinitiveCorrect"`
	IsPastSimpleCorrect     bool   `json:"isPastSimpleCorrect"`
	IsPastParticipleCorrect bool   `json:"isPastParticipleCorrect"`
}

// VerbTestResult は進捗テスト完了時の採点結果です
type VerbTestResult struct {
	Percentage float64          `json:"percentage"`
	Answers    []VerbTestAnswer `json:"answers"`
}
