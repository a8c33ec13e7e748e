// internal/service/reward_notifier.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go_5_pronounce_keep/internal/config"
	"go_5_pronounce_keep/internal/middleware"

	"github.com/google/uuid"
)

// XPの付与ポリシー
const (
	rewardHighScoreThreshold = 70.0
	rewardMidScoreThreshold  = 60.0
	rewardHighPoints         = 5
	rewardMidPoints          = 3
)

// RewardNotifier はスコアに応じた経験値(XP)を外部の報酬サービスに通知します。
// 通知の失敗は評価処理に影響させないこと（呼び出し側でログのみ）。
type RewardNotifier interface {
	Notify(ctx context.Context, userID uuid.UUID, overallScore float64) error
}

// xpForScore は総合スコアから付与ポイントを決めます。0 なら通知不要。
func xpForScore(overallScore float64) int {
	switch {
	case overallScore >= rewardHighScoreThreshold:
		return rewardHighPoints
	case overallScore >= rewardMidScoreThreshold:
		return rewardMidPoints
	default:
		return 0
	}
}

// --- LogRewardNotifier ---

// LogRewardNotifier は実際には通知せず、ログに出すだけの開発用実装です
type LogRewardNotifier struct{}

func (n *LogRewardNotifier) Notify(ctx context.Context, userID uuid.UUID, overallScore float64) error {
	logger := middleware.GetLogger(ctx)
	points := xpForScore(overallScore)
	if points == 0 {
		logger.Debug("--- Reward skipped (LogRewardNotifier) ---", "user_id", userID, "overall_score", overallScore)
		return nil
	}
	logger.Info("--- Awarding XP (LogRewardNotifier) ---",
		"user_id", userID,
		"overall_score", overallScore,
		"points", points,
	)
	return nil
}

// --- HTTPRewardNotifier ---

// HTTPRewardNotifier は外部の報酬エンドポイントにXP付与をPOSTします。
// 呼び出し側がfire-and-forgetで使う前提のため、クライアントに短いタイムアウトを持たせています。
type HTTPRewardNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPRewardNotifier(cfg *config.RewardConfig) *HTTPRewardNotifier {
	return &HTTPRewardNotifier{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type rewardRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
}

func (n *HTTPRewardNotifier) Notify(ctx context.Context, userID uuid.UUID, overallScore float64) error {
	points := xpForScore(overallScore)
	if points == 0 {
		// 付与対象外のスコアでは外部呼び出し自体を行わない
		return nil
	}

	payload, err := json.Marshal(rewardRequest{UserID: userID, Points: points})
	if err != nil {
		return fmt.Errorf("HTTPRewardNotifier.Notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPRewardNotifier.Notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPRewardNotifier.Notify: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTPRewardNotifier.Notify: reward server returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// --- NewRewardNotifier ファクトリ関数 ---
func NewRewardNotifier(cfg *config.Config) RewardNotifier {
	logger := slog.Default()
	switch strings.ToLower(cfg.Reward.Type) {
	case "http":
		logger.Info("Initializing HTTP reward notifier...", "url", cfg.Reward.URL)
		return NewHTTPRewardNotifier(&cfg.Reward)
	case "log":
		logger.Info("Initializing Log reward notifier...")
		return &LogRewardNotifier{}
	default:
		logger.Warn("Unknown reward notifier type, defaulting to LogRewardNotifier", "type", cfg.Reward.Type)
		return &LogRewardNotifier{}
	}
}
