// internal/handlers/pronunciation_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go_5_pronounce_keep/internal/handlers"
	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"
	"go_5_pronounce_keep/internal/service/mocks"
)

const testMaxAudioBytes = 10 << 20

// newTestRouter は開発用認証ミドルウェア付きのルーターを組み立てます
func newTestRouter(h *handlers.PronunciationHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.DevUserContextMiddleware)
	router.Post("/api/v1/pronunciation/assessments", h.PostAssessment)
	router.Get("/api/v1/pronunciation/attempts", h.GetAttempts)
	return router
}

// buildMultipartBody は expected_text と audio ファイルを持つ
// multipart/form-data ボディを組み立てます。空文字のフィールド名は省略します。
func buildMultipartBody(t *testing.T, expectedText string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if expectedText != "" {
		require.NoError(t, mw.WriteField("expected_text", expectedText))
	}
	if audio != nil {
		fw, err := mw.CreateFormFile("audio", "recording.wav")
		require.NoError(t, err)
		_, err = fw.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestPronunciationHandler_PostAssessment(t *testing.T) {
	userID := uuid.New()
	audio := []byte("RIFF....WAVEfmt dummy-audio")

	expectedResult := &model.AssessmentResult{
		Transcript:         "the cat sat",
		ExpectedText:       "the cat sat",
		AccuracyScore:      100,
		PronunciationScore: 85,
		OverallScore:       92.5,
		Level:              model.LevelAdvanced,
		WordFeedback: []model.WordFeedback{
			{Word: "the", Confidence: 0.9, IsCorrect: true, Tier: model.TierGreen},
			{Word: "cat", Confidence: 0.8, IsCorrect: true, Tier: model.TierGreen},
			{Word: "sat", Confidence: 0.85, IsCorrect: true, Tier: model.TierGreen},
		},
		Suggestions: []string{"Excellent pronunciation! Keep up the great work"},
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID // nilならX-User-IDヘッダーを付けない
		expectedText   string
		audio          []byte
		setupMock      func(m *mocks.PronunciationService)
		expectedStatus int
		expectError    bool
	}{
		{
			name:         "正常系: 評価に成功して201",
			userID:       &userID,
			expectedText: "the cat sat",
			audio:        audio,
			setupMock: func(m *mocks.PronunciationService) {
				m.On("Assess", mock.Anything, userID, audio, "the cat sat").
					Return(expectedResult, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: 認証ヘッダーなし",
			userID:         nil,
			expectedText:   "the cat sat",
			audio:          audio,
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusForbidden,
			expectError:    true,
		},
		{
			name:           "異常系: expected_textがない",
			userID:         &userID,
			expectedText:   "",
			audio:          audio,
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "異常系: expected_textが長すぎる",
			userID:         &userID,
			expectedText:   strings.Repeat("a", 501),
			audio:          audio,
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "異常系: 音声ファイルがない",
			userID:         &userID,
			expectedText:   "the cat sat",
			audio:          nil,
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:         "異常系: 音声認識基盤が落ちている",
			userID:       &userID,
			expectedText: "the cat sat",
			audio:        audio,
			setupMock: func(m *mocks.PronunciationService) {
				m.On("Assess", mock.Anything, userID, audio, "the cat sat").
					Return(nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識サーバーに接続できませんでした。", "", model.ErrTranscription)).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expectError:    true,
		},
		{
			name:         "異常系: 保存に失敗",
			userID:       &userID,
			expectedText: "the cat sat",
			audio:        audio,
			setupMock: func(m *mocks.PronunciationService) {
				m.On("Assess", mock.Anything, userID, audio, "the cat sat").
					Return(nil, model.NewAppError("PERSISTENCE_FAILED", "評価結果の保存に失敗しました。", "", model.ErrPersistence)).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewPronunciationService(t)
			tc.setupMock(mockService)
			handler := handlers.NewPronunciationHandler(mockService, testMaxAudioBytes, nil)
			router := newTestRouter(handler)

			body, contentType := buildMultipartBody(t, tc.expectedText, tc.audio)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pronunciation/assessments", body)
			req.Header.Set("Content-Type", contentType)
			if tc.userID != nil {
				req.Header.Set("X-User-ID", tc.userID.String())
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if !tc.expectError {
				var respResult model.AssessmentResult
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &respResult))
				assert.Equal(t, expectedResult.Transcript, respResult.Transcript)
				assert.InDelta(t, expectedResult.OverallScore, respResult.OverallScore, 1e-9)
				assert.Equal(t, expectedResult.Level, respResult.Level)
				assert.Len(t, respResult.WordFeedback, len(expectedResult.WordFeedback))
			} else {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error.Code)
				assert.NotEmpty(t, errResp.Error.Message)
			}
		})
	}
}

func TestPronunciationHandler_PostAssessment_BodyTooLarge(t *testing.T) {
	userID := uuid.New()
	mockService := mocks.NewPronunciationService(t)
	// サイズ上限を小さくして超過させる
	handler := handlers.NewPronunciationHandler(mockService, 64, nil)
	router := newTestRouter(handler)

	body, contentType := buildMultipartBody(t, "the cat sat", bytes.Repeat([]byte("a"), 1024))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pronunciation/assessments", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", userID.String())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPronunciationHandler_GetAttempts(t *testing.T) {
	userID := uuid.New()

	mockAttempts := []*model.AttemptResponse{
		{
			AttemptID:          uuid.New(),
			ExpectedText:       "the cat sat",
			Transcript:         "the cat sat",
			AccuracyScore:      100,
			PronunciationScore: 85,
			OverallScore:       92.5,
			Level:              model.LevelAdvanced,
			WordFeedback:       []model.WordFeedback{{Word: "the", Confidence: 0.9, IsCorrect: true, Tier: model.TierGreen}},
			Suggestions:        []string{"Excellent pronunciation! Keep up the great work"},
			CreatedAt:          time.Now(),
		},
		{
			AttemptID:          uuid.New(),
			ExpectedText:       "good morning",
			Transcript:         "good morning",
			AccuracyScore:      100,
			PronunciationScore: 75,
			OverallScore:       87.5,
			Level:              model.LevelUpperIntermediate,
			WordFeedback:       []model.WordFeedback{},
			Suggestions:        []string{},
			CreatedAt:          time.Now().Add(-time.Hour),
		},
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		query          string
		setupMock      func(m *mocks.PronunciationService)
		expectedStatus int
		expectedCount  int
		expectError    bool
	}{
		{
			name:   "正常系: 履歴を取得できる",
			userID: &userID,
			query:  "",
			setupMock: func(m *mocks.PronunciationService) {
				// limit省略時は0で渡し、デフォルト適用はService側に任せる
				m.On("History", mock.Anything, userID, 0).Return(mockAttempts, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:   "正常系: limit指定",
			userID: &userID,
			query:  "?limit=1",
			setupMock: func(m *mocks.PronunciationService) {
				m.On("History", mock.Anything, userID, 1).Return(mockAttempts[:1], nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:   "正常系: 履歴なしは空配列",
			userID: &userID,
			query:  "",
			setupMock: func(m *mocks.PronunciationService) {
				m.On("History", mock.Anything, userID, 0).Return(nil, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "異常系: 認証ヘッダーなし",
			userID:         nil,
			query:          "",
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusForbidden,
			expectError:    true,
		},
		{
			name:           "異常系: limitが数値でない",
			userID:         &userID,
			query:          "?limit=abc",
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "異常系: limitが負数",
			userID:         &userID,
			query:          "?limit=-1",
			setupMock:      func(m *mocks.PronunciationService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:   "異常系: Serviceで内部エラー",
			userID: &userID,
			query:  "",
			setupMock: func(m *mocks.PronunciationService) {
				m.On("History", mock.Anything, userID, 0).
					Return(nil, model.NewAppError("INTERNAL_SERVER_ERROR", "評価履歴の取得に失敗しました。", "", model.ErrInternalServer)).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewPronunciationService(t)
			tc.setupMock(mockService)
			handler := handlers.NewPronunciationHandler(mockService, testMaxAudioBytes, nil)
			router := newTestRouter(handler)

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/pronunciation/attempts%s", tc.query), nil)
			if tc.userID != nil {
				req.Header.Set("X-User-ID", tc.userID.String())
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if !tc.expectError {
				var respAttempts []*model.AttemptResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &respAttempts))
				assert.Len(t, respAttempts, tc.expectedCount)
				if tc.expectedCount > 0 {
					assert.Equal(t, mockAttempts[0].AttemptID, respAttempts[0].AttemptID)
					assert.Equal(t, mockAttempts[0].Level, respAttempts[0].Level)
				}
			} else {
				var errResp model.APIErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
				assert.NotEmpty(t, errResp.Error.Code)
				assert.NotEmpty(t, errResp.Error.Message)
			}
		})
	}
}
