// internal/service/transcriber_whisper.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go_5_pronounce_keep/internal/config"
	"go_5_pronounce_keep/internal/middleware"
	"go_5_pronounce_keep/internal/model"
)

// WhisperTranscriber はローカルの whisper-server (whisper.cpp) に
// POST /inference で音声を送り、単語ごとの確信度付きの認識結果を得る実装です。
// モデルはサーバー側にロードされた状態を共有するため、この構造体自体は
// 状態を持たず並行利用できます。
type WhisperTranscriber struct {
	serverURL  string
	language   string
	model      string
	httpClient *http.Client
}

func NewWhisperTranscriber(cfg *config.TranscriberConfig) *WhisperTranscriber {
	return &WhisperTranscriber{
		serverURL: cfg.URL,
		language:  cfg.Language,
		model:     cfg.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// inferenceResponse は whisper-server の verbose_json 形式レスポンスのうち、
// このサービスが使う部分だけを写し取ったものです。
type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Words []struct {
			Word        string  `json:"word"`
			Start       float64 `json:"start"`
			End         float64 `json:"end"`
			Probability float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (*model.Transcription, error) {
	logger := middleware.GetLogger(ctx)

	if len(audio) == 0 {
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声データが空です。", "", model.ErrTranscription)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("whisperTranscriber.Transcribe: create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, fmt.Errorf("whisperTranscriber.Transcribe: write audio data: %w", err)
	}

	// 単語レベルのタイムスタンプと確信度を得るために verbose_json を要求する
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("whisperTranscriber.Transcribe: write response_format field: %w", err)
	}
	if t.language != "" {
		if err := mw.WriteField("language", t.language); err != nil {
			return nil, fmt.Errorf("whisperTranscriber.Transcribe: write language field: %w", err)
		}
	}
	if t.model != "" {
		if err := mw.WriteField("model", t.model); err != nil {
			return nil, fmt.Errorf("whisperTranscriber.Transcribe: write model field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("whisperTranscriber.Transcribe: close multipart writer: %w", err)
	}

	endpoint := t.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("whisperTranscriber.Transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		logger.Error("Whisper server unreachable", "error", err, "endpoint", endpoint)
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識サーバーに接続できませんでした。", "", model.ErrTranscription)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Whisper server returned non-200", "status", resp.StatusCode, "endpoint", endpoint)
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識サーバーがエラーを返しました。", "", model.ErrTranscription)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Error reading whisper response body", "error", err)
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識結果の読み取りに失敗しました。", "", model.ErrTranscription)
	}

	var result inferenceResponse
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Error("Error parsing whisper JSON response", "error", err)
		return nil, model.NewAppError("TRANSCRIPTION_FAILED", "音声認識結果の解析に失敗しました。", "", model.ErrTranscription)
	}

	transcription := &model.Transcription{
		Text: strings.TrimSpace(result.Text),
	}
	for _, seg := range result.Segments {
		for _, w := range seg.Words {
			// whisperの単語トークンは先頭に空白が付くことがある
			word := strings.TrimSpace(w.Word)
			if word == "" {
				continue
			}
			transcription.Words = append(transcription.Words, model.RecognizedWord{
				Text:       word,
				Confidence: w.Probability,
				StartSec:   w.Start,
				EndSec:     w.End,
			})
		}
	}

	logger.Debug("Transcription completed",
		"text", transcription.Text,
		"word_count", len(transcription.Words),
	)
	return transcription, nil
}
