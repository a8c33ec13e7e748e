// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "PronounceKeep"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort      = ":8080"
	DefaultLogLevel        = "info"
	DefaultHistoryLimit    = 10
	DefaultHistoryMaxLimit = 100
	DefaultMaxAudioBytes   = 10 << 20 // 10MiB

	DefaultTranscriberType           = "stub"
	DefaultTranscriberLanguage       = "en"
	DefaultTranscriberTimeoutSeconds = 30

	DefaultRewardType           = "log"
	DefaultRewardTimeoutSeconds = 3
)
