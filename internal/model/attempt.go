// internal/model/attempt.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PronunciationAttempt は1回の発音評価の永続レコードです。
// 作成後は更新しない（append-only）。履歴はユーザーごとに作成日時の降順。
type PronunciationAttempt struct {
	AttemptID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	UserID             uuid.UUID        `gorm:"type:uuid;not null;index" json:"-"`
	ExpectedText       string           `gorm:"not null" json:"expected_text"`
	Transcript         string           `gorm:"not null" json:"transcript"`
	AccuracyScore      float64          `gorm:"not null" json:"accuracy_score"`
	PronunciationScore float64          `gorm:"not null" json:"pronunciation_score"`
	OverallScore       float64          `gorm:"not null" json:"overall_score"`
	Level              ProficiencyLevel `gorm:"not null" json:"level"`
	WordFeedbackJSON   string           `gorm:"column:word_feedback_json;not null" json:"-"`
	SuggestionsJSON    string           `gorm:"column:suggestions_json;not null" json:"-"`
	CreatedAt          time.Time        `gorm:"not null;index" json:"created_at"`
}

func (PronunciationAttempt) TableName() string {
	return "pronunciation_attempts"
}

// AttemptResponse は履歴APIのレスポンスDTO。
// JSONカラムを展開して返すため、エンティティと分けている。
type AttemptResponse struct {
	AttemptID          uuid.UUID        `json:"attempt_id"`
	ExpectedText       string           `json:"expected_text"`
	Transcript         string           `json:"transcript"`
	AccuracyScore      float64          `json:"accuracy_score"`
	PronunciationScore float64          `json:"pronunciation_score"`
	OverallScore       float64          `json:"overall_score"`
	Level              ProficiencyLevel `json:"level"`
	WordFeedback       []WordFeedback   `json:"word_feedback"`
	Suggestions        []string         `json:"suggestions"`
	CreatedAt          time.Time        `json:"created_at"`
}
