// internal/service/scoring.go
package service

import (
	"strings"

	"go_5_pronounce_keep/internal/model"
)

// 単語の信頼度区分の閾値
const (
	tierGreenThreshold  = 0.70 // これ以上は green
	tierOrangeThreshold = 0.50 // これ以上 green 未満は orange、未満は red
)

// 練習推奨単語の閾値。区分の閾値(0.50/0.70)とは独立した値で、
// orange の一部(0.50-0.59)も練習対象に含める意図の仕様。閾値を揃えないこと。
const practiceWordThreshold = 0.60

// 区分ごとの指摘メッセージ
const (
	issueOrange = "pronunciation could be clearer"
	issueRed    = "low confidence - pronunciation needs improvement"
)

// classifyConfidence は信頼度を区分と指摘メッセージに変換します。
// 純粋関数で、単語ごとに独立に判定します（前後の単語による平滑化はしない）。
func classifyConfidence(confidence float64) (model.WordTier, string) {
	switch {
	case confidence >= tierGreenThreshold:
		return model.TierGreen, ""
	case confidence >= tierOrangeThreshold:
		return model.TierOrange, issueOrange
	default:
		return model.TierRed, issueRed
	}
}

// accuracyScore は認識テキストとお手本テキストの位置ベース一致率を返します (0-100)。
// 分母は長い方の単語数。単語数が合わない場合、重なる部分が全部一致していても
// 減点される仕様です。
func accuracyScore(transcript, expectedText string) float64 {
	transcriptWords := tokenizeWords(transcript)
	expectedWords := tokenizeWords(expectedText)

	maxLen := len(transcriptWords)
	if len(expectedWords) > maxLen {
		maxLen = len(expectedWords)
	}
	if maxLen == 0 {
		return 0
	}

	n := len(transcriptWords)
	if len(expectedWords) < n {
		n = len(expectedWords)
	}

	matches := 0
	for i := 0; i < n; i++ {
		if transcriptWords[i] == expectedWords[i] {
			matches++
		}
	}

	return float64(matches) / float64(maxLen) * 100
}

// pronunciationScore は認識単語の信頼度の平均を返します (0-100)。
// 認識単語が無い場合は 0。
func pronunciationScore(words []model.RecognizedWord) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words)) * 100
}

// determineLevel は総合スコアを習熟度レベルに変換します。
// 各バンドの下限は含む。上から順に評価し最初に一致したものを返します。
func determineLevel(overallScore float64) model.ProficiencyLevel {
	switch {
	case overallScore >= 90:
		return model.LevelAdvanced
	case overallScore >= 75:
		return model.LevelUpperIntermediate
	case overallScore >= 60:
		return model.LevelIntermediate
	case overallScore >= 45:
		return model.LevelLowerIntermediate
	default:
		return model.LevelBeginner
	}
}

// buildSuggestions は低信頼度の単語と総合スコアから練習アドバイスを組み立てます。
// 1. 信頼度 < 0.60 の単語があれば "Practice these words: ..." を1件
//    （認識順・重複込み）
// 2. 総合スコアに応じたアドバイスを追加
func buildSuggestions(feedback []model.WordFeedback, overallScore float64) []string {
	suggestions := []string{}

	var practiceWords []string
	for _, f := range feedback {
		if f.Confidence < practiceWordThreshold {
			practiceWords = append(practiceWords, f.Word)
		}
	}
	if len(practiceWords) > 0 {
		suggestions = append(suggestions, "Practice these words: "+strings.Join(practiceWords, ", "))
	}

	switch {
	case overallScore < 60:
		suggestions = append(suggestions,
			"Try to speak more slowly and clearly",
			"Focus on pronouncing each word distinctly",
		)
	case overallScore < 80:
		suggestions = append(suggestions, "Good progress! Keep practicing for better fluency")
	default:
		suggestions = append(suggestions, "Excellent pronunciation! Keep up the great work")
	}

	return suggestions
}
