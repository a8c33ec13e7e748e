// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HistoryLimit    int   `mapstructure:"history_limit"`     // 履歴取得のデフォルト件数
	HistoryMaxLimit int   `mapstructure:"history_max_limit"` // 履歴取得の上限件数
	MaxAudioBytes   int64 `mapstructure:"max_audio_bytes"`   // アップロード音声の最大サイズ
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// TranscriberConfig は音声認識バックエンドの設定です。
// type は "whisper"（whisper-serverへのHTTP接続）または "stub"。
type TranscriberConfig struct {
	Type           string `mapstructure:"type"`
	URL            string `mapstructure:"url"`
	Language       string `mapstructure:"language"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RewardConfig は報酬(XP)連携先の設定です。
// type は "http"（外部エンドポイントへPOST）または "log"。
type RewardConfig struct {
	Type           string `mapstructure:"type"`
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	App         AppConfig         `mapstructure:"app"`
	Auth        AuthConfig        `mapstructure:"auth"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Transcriber TranscriberConfig `mapstructure:"transcriber"`
	Reward      RewardConfig      `mapstructure:"reward"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数を自動で読み込む (例: APP_DATABASE_URL)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("transcriber.url", "TRANSCRIBER_URL")
	viper.BindEnv("reward.url", "REWARD_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.App.HistoryLimit <= 0 {
		log.Printf("App history limit not set or invalid, using default '%d'", DefaultHistoryLimit)
		Cfg.App.HistoryLimit = DefaultHistoryLimit
	}
	if Cfg.App.HistoryMaxLimit <= 0 {
		Cfg.App.HistoryMaxLimit = DefaultHistoryMaxLimit
	}
	if Cfg.App.MaxAudioBytes <= 0 {
		Cfg.App.MaxAudioBytes = DefaultMaxAudioBytes
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	if Cfg.Transcriber.Type == "" {
		Cfg.Transcriber.Type = DefaultTranscriberType
	}
	if Cfg.Transcriber.Language == "" {
		Cfg.Transcriber.Language = DefaultTranscriberLanguage
	}
	if Cfg.Transcriber.TimeoutSeconds <= 0 {
		Cfg.Transcriber.TimeoutSeconds = DefaultTranscriberTimeoutSeconds
	}
	if Cfg.Reward.Type == "" {
		Cfg.Reward.Type = DefaultRewardType
	}
	if Cfg.Reward.TimeoutSeconds <= 0 {
		Cfg.Reward.TimeoutSeconds = DefaultRewardTimeoutSeconds
	}

	// Auth.Enabled のデフォルト値を設定 (未設定なら true = 有効 にする)
	if !viper.IsSet("auth.enabled") {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		Cfg.Auth.Enabled = true
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("History Limit: %d", Cfg.App.HistoryLimit)
	log.Printf("Transcriber Type: %s", Cfg.Transcriber.Type)
	log.Printf("Reward Type: %s", Cfg.Reward.Type)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)

	return nil
}
