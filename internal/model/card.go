// internal/model/card.go
package model

// TagGroup はタグの意味グループです。品詞グループと優先度グループは排他で、
// どちらにも属さないタグは TagGroupNone になります。
type TagGroup int

const (
	TagGroupNone TagGroup = iota
	TagGroupPartOfSpeech
	TagGroupPriority
)

// サーバー側で定義されている固定タグのグループ分け
var partOfSpeechTags = map[string]struct{}{
	"adj": {}, "adverb": {}, "idiom": {}, "noun": {}, "phrasal verb": {},
	"phrase": {}, "preposition": {}, "verb": {}, "conjunction": {},
	"determiner": {}, "interjection": {}, "numeral": {}, "participle": {},
	"pronoun": {},
}

var priorityTags = map[string]struct{}{
	"high-priority": {}, "low-priority": {}, "mid-priority": {},
	"top-priority": {}, "vital": {}, "zero-priority": {},
}

// Tag は単語に付与されたタグです
type Tag struct {
	Tag string `json:"tag"`
}

// Group はタグの意味グループを返します
func (t Tag) Group() TagGroup {
	if _, ok := partOfSpeechTags[t.Tag]; ok {
		return TagGroupPartOfSpeech
	}
	if _, ok := priorityTags[t.Tag]; ok {
		return TagGroupPriority
	}
	return TagGroupNone
}

// Card は学習セッションで出題される1つの語彙項目です。
// サーバーが生成してメッセージとして配信するもので、クライアント側では不変として扱います。
type Card struct {
	ID        int64     `json:"id" validate:"required"`
	Input     string    `json:"input" validate:"required"` // 見出し語
	Translate string    `json:"translate"`
	Examples  []*string `json:"examples"` // 各要素はnullの可能性がある
	Tags      []Tag     `json:"tags"`
}

// ExampleTexts はnull・空文字列を除いた例文のみを返します
func (c *Card) ExampleTexts() []string {
	texts := make([]string, 0, len(c.Examples))
	for _, ex := range c.Examples {
		if ex != nil && *ex != "" {
			texts = append(texts, *ex)
		}
	}
	return texts
}

// AnswerSubmission は1枚のカードに対するユーザーの正誤判定の送信DTOです
type AnswerSubmission struct {
	InputID   int64 `json:"inputId" validate:"required"`
	IsCorrect bool  `json:"isCorrect"`
}
