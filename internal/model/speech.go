// internal/model/speech.go
package model

// WordTier は単語ごとの発音信頼度の区分（信号色）です
type WordTier string

const (
	TierGreen  WordTier = "green"  // 信頼度 0.70 以上
	TierOrange WordTier = "orange" // 信頼度 0.50 以上 0.70 未満
	TierRed    WordTier = "red"    // 信頼度 0.50 未満
)

// ProficiencyLevel は総合スコアから判定する習熟度レベルです
type ProficiencyLevel string

const (
	LevelAdvanced          ProficiencyLevel = "Advanced"
	LevelUpperIntermediate ProficiencyLevel = "Upper intermediate"
	LevelIntermediate      ProficiencyLevel = "Intermediate"
	LevelLowerIntermediate ProficiencyLevel = "Lower intermediate"
	LevelBeginner          ProficiencyLevel = "Beginner"
)

// RecognizedWord は音声認識が出力した1単語の仮説です。
// Confidence は [0,1]、StartSec/EndSec は音声先頭からの秒数。
type RecognizedWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	StartSec   float64 `json:"start_sec"`
	EndSec     float64 `json:"end_sec"`
}

// Transcription は音声認識（Transcriber）の結果一式です
type Transcription struct {
	Text  string           `json:"text"`
	Words []RecognizedWord `json:"words"`
}

// WordFeedback は認識単語1つに対する評価です。RecognizedWordと同順・同数。
type WordFeedback struct {
	Word       string   `json:"word"`
	Confidence float64  `json:"confidence"`
	IsCorrect  bool     `json:"is_correct"`
	Tier       WordTier `json:"tier"`
	Issue      string   `json:"issue,omitempty"`
}

// AssessmentRequest は評価エンドポイントのフォーム入力（音声ファイル以外）です
type AssessmentRequest struct {
	ExpectedText string `json:"expected_text" validate:"required,max=500"`
}

// AssessmentResult は1回の発音評価の結果です。生成後は不変。
type AssessmentResult struct {
	Transcript         string           `json:"transcript"`
	ExpectedText       string           `json:"expected_text"`
	AccuracyScore      float64          `json:"accuracy_score"`      // 0-100
	PronunciationScore float64          `json:"pronunciation_score"` // 0-100
	OverallScore       float64          `json:"overall_score"`       // 0-100
	Level              ProficiencyLevel `json:"level"`
	WordFeedback       []WordFeedback   `json:"word_feedback"`
	Suggestions        []string         `json:"suggestions"`
}
