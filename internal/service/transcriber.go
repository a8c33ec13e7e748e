// internal/service/transcriber.go
package service

import (
	"context"
	"log/slog"
	"strings"

	"go_5_pronounce_keep/internal/config"
	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"
)

// Transcriber は音声バイト列を単語列付きのテキストに変換します。
// 認識エンジン本体（モデルのロード等）は実装側が保持し、サービス層は
// このコントラクトにのみ依存します。
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (*model.Transcription, error)
}

// --- StubTranscriber ---

// StubTranscriber は音声の内容にかかわらず固定の認識結果を返します。
// 認識エンジンなしで動作確認するための開発用実装です。
type StubTranscriber struct {
	// Result が nil の場合はデフォルトの文を返す
	Result *model.Transcription
}

func (t *StubTranscriber) Transcribe(ctx context.Context, audio []byte) (*model.Transcription, error) {
	logger := middleware.GetLogger(ctx)
	if len(audio) == 0 {
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声データが空です。", "", model.ErrTranscription)
	}
	result := t.Result
	if result == nil {
		result = &model.Transcription{
			Text: "hello world",
			Words: []model.RecognizedWord{
				{Text: "hello", Confidence: 0.95, StartSec: 0.0, EndSec: 0.4},
				{Text: "world", Confidence: 0.92, StartSec: 0.5, EndSec: 0.9},
			},
		}
	}
	logger.Info("--- Transcribing (StubTranscriber) ---",
		"audio_bytes", len(audio),
		"text", result.Text,
	)
	return result, nil
}

// --- NewTranscriber ファクトリ関数 ---
func NewTranscriber(cfg *config.Config) Transcriber {
	logger := slog.Default()
	switch strings.ToLower(cfg.Transcriber.Type) {
	case "whisper":
		logger.Info("Initializing whisper transcriber...", "url", cfg.Transcriber.URL)
		return NewWhisperTranscriber(&cfg.Transcriber)
	case "stub":
		logger.Info("Initializing stub transcriber...")
		return &StubTranscriber{}
	default:
		logger.Warn("Unknown transcriber type, defaulting to StubTranscriber", "type", cfg.Transcriber.Type)
		return &StubTranscriber{}
	}
}
