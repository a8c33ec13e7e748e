// internal/repository/attempt_repository_test.go
package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go_5_pronounce_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite" // テスト用にsqliteを使用
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 ---
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
	})
	if err != nil {
		t.Fatalf("failed to connect database for attempt repository testing: %v", err)
	}
	if err := db.AutoMigrate(&model.PronunciationAttempt{}); err != nil {
		t.Fatalf("failed to migrate database for attempt repository testing: %v", err)
	}
	return db
}

func newAttempt(userID uuid.UUID, createdAt time.Time) *model.PronunciationAttempt {
	return &model.PronunciationAttempt{
		AttemptID:          uuid.New(),
		UserID:             userID,
		ExpectedText:       "the cat sat",
		Transcript:         "the cat sat",
		AccuracyScore:      100,
		PronunciationScore: 85,
		OverallScore:       92.5,
		Level:              model.LevelAdvanced,
		WordFeedbackJSON:   `[]`,
		SuggestionsJSON:    `[]`,
		CreatedAt:          createdAt,
	}
}

func TestGormAttemptRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAttemptRepository()
	userID := uuid.New()

	t.Run("正常系: レコードを作成できる", func(t *testing.T) {
		attempt := newAttempt(userID, time.Now())

		err := repo.Create(ctx, db, attempt)

		require.NoError(t, err)
		var found model.PronunciationAttempt
		require.NoError(t, db.First(&found, "attempt_id = ?", attempt.AttemptID).Error)
		assert.Equal(t, attempt.UserID, found.UserID)
		assert.Equal(t, attempt.ExpectedText, found.ExpectedText)
		assert.Equal(t, attempt.Level, found.Level)
		assert.InDelta(t, attempt.OverallScore, found.OverallScore, 1e-9)
	})

	t.Run("異常系: 主キーが重複", func(t *testing.T) {
		attempt := newAttempt(userID, time.Now())
		require.NoError(t, repo.Create(ctx, db, attempt))

		dup := newAttempt(userID, time.Now())
		dup.AttemptID = attempt.AttemptID

		err := repo.Create(ctx, db, dup)

		assert.Error(t, err)
	})
}

func TestGormAttemptRepository_FindByUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAttemptRepository()
	userID := uuid.New()
	otherUserID := uuid.New()

	// 古い順に5件作成（取得は新しい順になるはず）
	base := time.Now().Add(-time.Hour)
	var created []*model.PronunciationAttempt
	for i := 0; i < 5; i++ {
		attempt := newAttempt(userID, base.Add(time.Duration(i)*time.Minute))
		attempt.ExpectedText = fmt.Sprintf("sentence %d", i)
		require.NoError(t, repo.Create(ctx, db, attempt))
		created = append(created, attempt)
	}
	// 他ユーザーのレコードは混ざらないこと
	require.NoError(t, repo.Create(ctx, db, newAttempt(otherUserID, time.Now())))

	t.Run("正常系: 新しい順に取得できる", func(t *testing.T) {
		attempts, err := repo.FindByUser(ctx, db, userID, 10)

		require.NoError(t, err)
		require.Len(t, attempts, 5)
		for i := 0; i < len(attempts)-1; i++ {
			assert.True(t, !attempts[i].CreatedAt.Before(attempts[i+1].CreatedAt),
				"attempts should be ordered newest first")
		}
		assert.Equal(t, "sentence 4", attempts[0].ExpectedText)
		assert.Equal(t, "sentence 0", attempts[4].ExpectedText)
	})

	t.Run("正常系: limitで件数を絞れる", func(t *testing.T) {
		attempts, err := repo.FindByUser(ctx, db, userID, 2)

		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, "sentence 4", attempts[0].ExpectedText)
		assert.Equal(t, "sentence 3", attempts[1].ExpectedText)
	})

	t.Run("正常系: 他ユーザーのレコードは返さない", func(t *testing.T) {
		attempts, err := repo.FindByUser(ctx, db, userID, 10)

		require.NoError(t, err)
		for _, a := range attempts {
			assert.Equal(t, userID, a.UserID)
		}
	})

	t.Run("正常系: 該当レコードなしは空スライス", func(t *testing.T) {
		attempts, err := repo.FindByUser(ctx, db, uuid.New(), 10)

		require.NoError(t, err)
		assert.Empty(t, attempts)
	})

	t.Run("正常系: 繰り返し取得しても結果は変わらない", func(t *testing.T) {
		first, err := repo.FindByUser(ctx, db, userID, 10)
		require.NoError(t, err)
		second, err := repo.FindByUser(ctx, db, userID, 10)
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].AttemptID, second[i].AttemptID)
		}
	})
}
