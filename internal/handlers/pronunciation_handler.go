// internal/handlers/pronunciation_handler.go
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"
	"go_5_pronounce_keep/internal/service"
	"go_5_pronounce_keep/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type PronunciationHandler struct {
	service       service.PronunciationService
	maxAudioBytes int64
	logger        *slog.Logger
}

func NewPronunciationHandler(s service.PronunciationService, maxAudioBytes int64, logger *slog.Logger) *PronunciationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PronunciationHandler{
		service:       s,
		maxAudioBytes: maxAudioBytes,
		logger:        logger,
	}
}

// PostAssessment は音声とお手本テキストを受け取り、発音評価を実行するハンドラ。
// リクエストは multipart/form-data で、audio ファイルと expected_text フィールドを持つ。
func (h *PronunciationHandler) PostAssessment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostAssessment"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	// アップロードサイズの上限を適用してからマルチパートを解析する
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes)
	if err := r.ParseMultipartForm(h.maxAudioBytes); err != nil {
		logger.Warn("Failed to parse multipart form", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。音声ファイルのサイズ上限も確認してください。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	req := model.AssessmentRequest{ExpectedText: r.FormValue("expected_text")}
	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		// エラーがバリデーションエラーか判定
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))

			// 最初のエラーを代表としてクライアントに返す
			firstErr := validationErrors[0]
			// 日本語メッセージに翻訳
			translatedMsg := firstErr.Translate(webutil.Trans)

			appErr := model.NewAppError(
				"VALIDATION_ERROR",
				translatedMsg,
				firstErr.Field(), // エラーが発生したフィールド (jsonタグ名)
				model.ErrInvalidInput,
			)
			webutil.HandleError(w, logger, appErr)
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}
	expectedText := req.ExpectedText

	file, fileHeader, err := r.FormFile("audio")
	if err != nil {
		logger.Warn("audio file is missing", slog.String("error", err.Error()))
		appErr := model.NewAppError("VALIDATION_ERROR", "音声ファイルは必須項目です。", "audio", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read audio file", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	logger.Debug("Audio file received",
		slog.String("filename", fileHeader.Filename),
		slog.Int("size_bytes", len(audio)),
	)

	result, err := h.service.Assess(r.Context(), userID, audio, expectedText)
	if err != nil {
		logger.Error("Error assessing pronunciation in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Assessment posted successfully",
		slog.Float64("overall_score", result.OverallScore),
		slog.String("level", string(result.Level)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, result, logger)
}

// GetAttempts は認証ユーザーの評価履歴（新しい順）を取得するハンドラ
func (h *PronunciationHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAttempts"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	// limit はオプション。省略時はサービス側でデフォルト値を適用する。
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			logger.Warn("Invalid limit query parameter", slog.String("limit_str", limitStr))
			appErr := model.NewAppError("INVALID_URL_PARAM", "limitの形式が正しくありません。", "limit", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
	}

	attempts, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("No attempts found in service", slog.Any("error", err))
		} else {
			logger.Error("Error listing attempts in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	if attempts == nil {
		attempts = []*model.AttemptResponse{}
	}
	logger.Info("Attempts listed successfully", slog.Int("count", len(attempts)))
	webutil.RespondWithJSON(w, http.StatusOK, attempts, logger)
}
