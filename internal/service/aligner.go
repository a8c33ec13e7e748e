// internal/service/aligner.go
package service

import (
	"strings"

	"go_5_pronounce_keep/internal/model"
)

// Aligner は認識単語列とお手本テキストを突き合わせ、各認識単語が
// 正しいかどうかのフラグ列を返します。戻り値の長さは必ず len(words) と一致します。
// 位置ベース以外の方式（編集距離など）に差し替えられるようインターフェースにしています。
type Aligner interface {
	Align(expectedText string, words []model.RecognizedWord) []bool
}

// PositionalAligner は位置ベースの単純な突き合わせを行います。
// i番目の認識単語はお手本のi番目の単語とだけ比較されるため、
// 単語の挿入・脱落が起きると以降の単語がすべて不一致になります。
// 挙動を変える場合はこの実装を置き換えるのではなく、別のAligner実装を追加してください。
type PositionalAligner struct{}

func NewPositionalAligner() *PositionalAligner {
	return &PositionalAligner{}
}

func (a *PositionalAligner) Align(expectedText string, words []model.RecognizedWord) []bool {
	expectedWords := tokenizeWords(expectedText)

	flags := make([]bool, len(words))
	for i, w := range words {
		if i < len(expectedWords) && strings.EqualFold(w.Text, expectedWords[i]) {
			flags[i] = true
		}
	}
	return flags
}

// tokenizeWords はテキストを空白で区切り、小文字化した単語リストにします
func tokenizeWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = strings.ToLower(f)
	}
	return words
}
