//go:generate mockery --name PronunciationService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go_5_pronounce_keep/internal/config"
	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"
	"go_5_pronounce_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// rewardNotifyTimeout は報酬通知(fire-and-forget)専用のタイムアウトです。
// リクエスト本体のコンテキストとは切り離して使います。
const rewardNotifyTimeout = 5 * time.Second

// PronunciationService は発音評価のユースケースを提供します
type PronunciationService interface {
	Assess(ctx context.Context, userID uuid.UUID, audio []byte, expectedText string) (*model.AssessmentResult, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*model.AttemptResponse, error)
}

type pronunciationService struct {
	db          *gorm.DB
	attemptRepo repository.AttemptRepository
	transcriber Transcriber
	aligner     Aligner
	notifier    RewardNotifier
	cfg         *config.Config

	// notifyHook はテストから非同期の報酬通知の完了を待つためのフック。
	// 本番では nil のまま。
	notifyHook func(err error)
}

func NewPronunciationService(
	db *gorm.DB,
	attemptRepo repository.AttemptRepository,
	transcriber Transcriber,
	aligner Aligner,
	notifier RewardNotifier,
	cfg *config.Config,
) PronunciationService {
	return &pronunciationService{
		db:          db,
		attemptRepo: attemptRepo,
		transcriber: transcriber,
		aligner:     aligner,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Assess は音声とお手本テキストから発音評価を行い、結果を永続化して返します。
// 処理は 認識 → 突き合わせ/区分 → スコア集計 → 永続化 の順で同期的に行い、
// 報酬通知だけをレスポンスと切り離して非同期に行います。
func (s *pronunciationService) Assess(ctx context.Context, userID uuid.UUID, audio []byte, expectedText string) (*model.AssessmentResult, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	// --- 入力チェック（認識エンジンを呼ぶ前に弾く） ---
	if strings.TrimSpace(expectedText) == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "お手本の文章が指定されていません。", "expected_text", model.ErrInvalidInput)
	}
	if len(audio) == 0 {
		return nil, model.NewAppError("VALIDATION_ERROR", "音声データが空です。", "audio", model.ErrInvalidInput)
	}

	// --- 音声認識 ---
	transcription, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		logger.Error("Transcription failed", "error", err)
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識に失敗しました。", "", model.ErrTranscription)
	}

	// --- 単語ごとの突き合わせと信頼度区分 ---
	correctFlags := s.aligner.Align(expectedText, transcription.Words)
	feedback := make([]model.WordFeedback, len(transcription.Words))
	for i, w := range transcription.Words {
		tier, issue := classifyConfidence(w.Confidence)
		feedback[i] = model.WordFeedback{
			Word:       w.Text,
			Confidence: w.Confidence,
			IsCorrect:  correctFlags[i],
			Tier:       tier,
			Issue:      issue,
		}
	}

	// --- スコア集計 ---
	accuracy := accuracyScore(transcription.Text, expectedText)
	pronunciation := pronunciationScore(transcription.Words)
	overall := (accuracy + pronunciation) / 2
	level := determineLevel(overall)
	suggestions := buildSuggestions(feedback, overall)

	result := &model.AssessmentResult{
		Transcript:         transcription.Text,
		ExpectedText:       expectedText,
		AccuracyScore:      accuracy,
		PronunciationScore: pronunciation,
		OverallScore:       overall,
		Level:              level,
		WordFeedback:       feedback,
		Suggestions:        suggestions,
	}

	// --- 永続化 ---
	// 評価は記録されて初めて完了。保存に失敗したら呼び出し元にも失敗を返す。
	attempt, err := s.recordAttempt(ctx, userID, result)
	if err != nil {
		logger.Error("Failed to record attempt", "error", err)
		return nil, err
	}

	logger.Info("Assessment completed",
		"attempt_id", attempt.AttemptID,
		"overall_score", overall,
		"level", string(level),
	)

	// --- 報酬通知 (fire-and-forget) ---
	// レスポンスを遅らせないこと。リクエストのコンテキストはすぐ破棄されるため、
	// 通知専用のコンテキストを別に切る。
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), rewardNotifyTimeout)
		defer cancel()

		notifyErr := s.notifier.Notify(notifyCtx, userID, overall)
		if notifyErr != nil {
			// 通知の失敗は評価の成否に影響させない。ログのみ。
			logger.Warn("Reward notification failed", "error", notifyErr, "overall_score", overall)
		}
		if s.notifyHook != nil {
			s.notifyHook(notifyErr)
		}
	}()

	return result, nil
}

// recordAttempt は評価結果を1件の不変レコードとして保存します
func (s *pronunciationService) recordAttempt(ctx context.Context, userID uuid.UUID, result *model.AssessmentResult) (*model.PronunciationAttempt, error) {
	feedbackJSON, err := json.Marshal(result.WordFeedback)
	if err != nil {
		return nil, model.NewAppError("PERSISTENCE_FAILED", "評価結果の保存に失敗しました。", "", model.ErrPersistence)
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return nil, model.NewAppError("PERSISTENCE_FAILED", "評価結果の保存に失敗しました。", "", model.ErrPersistence)
	}

	attempt := &model.PronunciationAttempt{
		AttemptID:          uuid.New(),
		UserID:             userID,
		ExpectedText:       result.ExpectedText,
		Transcript:         result.Transcript,
		AccuracyScore:      result.AccuracyScore,
		PronunciationScore: result.PronunciationScore,
		OverallScore:       result.OverallScore,
		Level:              result.Level,
		WordFeedbackJSON:   string(feedbackJSON),
		SuggestionsJSON:    string(suggestionsJSON),
		CreatedAt:          time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.attemptRepo.Create(ctx, tx, attempt)
	})
	if err != nil {
		return nil, model.NewAppError("PERSISTENCE_FAILED", "評価結果の保存に失敗しました。", "", model.ErrPersistence)
	}

	return attempt, nil
}

// History はユーザーの評価履歴を新しい順に返します。
// limit が 0 以下ならデフォルト件数、上限を超えたら上限に丸めます。
func (s *pronunciationService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*model.AttemptResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID)

	if limit <= 0 {
		limit = s.cfg.App.HistoryLimit
	}
	if limit > s.cfg.App.HistoryMaxLimit {
		limit = s.cfg.App.HistoryMaxLimit
	}

	attempts, err := s.attemptRepo.FindByUser(ctx, s.db, userID, limit)
	if err != nil {
		logger.Error("Failed to find attempts from repository", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "評価履歴の取得に失敗しました。", "", model.ErrInternalServer)
	}

	responses := make([]*model.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp := &model.AttemptResponse{
			AttemptID:          a.AttemptID,
			ExpectedText:       a.ExpectedText,
			Transcript:         a.Transcript,
			AccuracyScore:      a.AccuracyScore,
			PronunciationScore: a.PronunciationScore,
			OverallScore:       a.OverallScore,
			Level:              a.Level,
			CreatedAt:          a.CreatedAt,
		}
		if err := json.Unmarshal([]byte(a.WordFeedbackJSON), &resp.WordFeedback); err != nil {
			logger.Warn("Found attempt with broken word feedback JSON", "attempt_id", a.AttemptID, "error", err)
			resp.WordFeedback = []model.WordFeedback{}
		}
		if err := json.Unmarshal([]byte(a.SuggestionsJSON), &resp.Suggestions); err != nil {
			logger.Warn("Found attempt with broken suggestions JSON", "attempt_id", a.AttemptID, "error", err)
			resp.Suggestions = []string{}
		}
		responses = append(responses, resp)
	}

	logger.Info("Successfully retrieved attempt history", "count", len(responses))
	return responses, nil
}
