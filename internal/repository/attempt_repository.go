//go:generate mockery --name AttemptRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// AttemptRepository は発音評価レコードの永続化を担います。
// レコードは作成のみで、更新・削除は提供しない（append-only）。
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *model.PronunciationAttempt) error
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.PronunciationAttempt, error)
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.PronunciationAttempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		// 主キー重複 (UUID衝突や二重送信) は Conflict として区別する
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" {
			logger.Warn("Duplicate attempt ID on insert",
				"attempt_id", attempt.AttemptID.String(),
				"user_id", attempt.UserID.String(),
			)
			return model.ErrConflict
		}
		logger.Error("Error creating attempt in DB",
			"error", result.Error,
			"user_id", attempt.UserID.String(),
		)
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAttemptRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*model.PronunciationAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempts []*model.PronunciationAttempt
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts)
	if result.Error != nil {
		logger.Error("Error finding attempts by user in DB",
			"error", result.Error,
			"user_id", userID.String(),
		)
		return nil, fmt.Errorf("gormAttemptRepository.FindByUser: %w", result.Error)
	}
	return attempts, nil
}
