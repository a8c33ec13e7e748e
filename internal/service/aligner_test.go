// internal/service/aligner_test.go
package service

import (
	"testing"

	"go_5_pronounce_keep/internal/model"

	"github.com/stretchr/testify/assert"
)

func words(texts ...string) []model.RecognizedWord {
	ws := make([]model.RecognizedWord, len(texts))
	for i, t := range texts {
		ws[i] = model.RecognizedWord{Text: t, Confidence: 0.9}
	}
	return ws
}

func TestPositionalAligner_Align(t *testing.T) {
	aligner := NewPositionalAligner()

	tests := []struct {
		name         string
		expectedText string
		words        []model.RecognizedWord
		want         []bool
	}{
		{
			name:         "正常系: 完全一致",
			expectedText: "the cat sat",
			words:        words("the", "cat", "sat"),
			want:         []bool{true, true, true},
		},
		{
			name:         "正常系: 大文字小文字は無視",
			expectedText: "The Cat SAT",
			words:        words("the", "CAT", "sat"),
			want:         []bool{true, true, true},
		},
		{
			name:         "正常系: 中間の1単語だけ不一致",
			expectedText: "the cat sat",
			words:        words("the", "kat", "sat"),
			want:         []bool{true, false, true},
		},
		{
			// 位置ベースのため、先頭に単語が挿入されると以降がすべて不一致になる。
			// これは仕様であり、再同期はしない。
			name:         "正常系: 先頭挿入で以降がすべて不一致",
			expectedText: "the cat sat",
			words:        words("uh", "the", "cat", "sat"),
			want:         []bool{false, false, false, false},
		},
		{
			name:         "正常系: お手本より多い単語は不一致",
			expectedText: "the cat",
			words:        words("the", "cat", "sat"),
			want:         []bool{true, true, false},
		},
		{
			name:         "正常系: 認識単語が少ない場合は前方だけ判定",
			expectedText: "the cat sat down",
			words:        words("the", "cat"),
			want:         []bool{true, true},
		},
		{
			name:         "異常系: 認識単語なし",
			expectedText: "the cat sat",
			words:        nil,
			want:         []bool{},
		},
		{
			name:         "異常系: お手本が空なら全不一致",
			expectedText: "",
			words:        words("the", "cat"),
			want:         []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aligner.Align(tt.expectedText, tt.words)
			// 戻り値の長さは常に認識単語数と一致すること
			assert.Len(t, got, len(tt.words))
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_tokenizeWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "正常系: 空白区切りで小文字化", text: "The Cat SAT", want: []string{"the", "cat", "sat"}},
		{name: "正常系: 連続空白やタブも1区切り", text: "  the \t cat\n sat ", want: []string{"the", "cat", "sat"}},
		{name: "異常系: 空文字列", text: "", want: []string{}},
		{name: "異常系: 空白のみ", text: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeWords(tt.text))
		})
	}
}
