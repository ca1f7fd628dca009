// Package config はサービスの設定を環境変数と.envファイルから読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 対応しているデータベースドライバ。
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// devJWTSecret は開発環境でのみ使用するJWT署名鍵。
const devJWTSecret = "dev-secret-key"

// Config はサービス全体の設定値。
type Config struct {
	// Env は実行環境（dev, test, prod）。
	Env string
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DB はデータベース接続設定。
	DB DBConfig
	// JWTSecret はJWT検証に使用する署名鍵。
	JWTSecret string
	// Push はWeb Push配信の設定。
	Push PushConfig
	// Log はログ出力の設定。
	Log LogConfig
	// CORSAllowedOrigins はクロスオリジンを許可するオリジン一覧。
	CORSAllowedOrigins []string
}

// DBConfig はデータベース接続設定。
type DBConfig struct {
	// Driver は "sqlite" または "postgres"。
	Driver string
	// DSN はドライバに渡す接続文字列。
	DSN string
}

// PushConfig はVAPID鍵とプッシュ配信パラメータ。
type PushConfig struct {
	// VAPIDPublicKey はクライアントの購読登録に渡す公開鍵。
	VAPIDPublicKey string
	// VAPIDPrivateKey はVAPID署名用の秘密鍵。
	VAPIDPrivateKey string
	// Subject はVAPIDのsubクレーム（mailto: またはURL）。
	Subject string
	// TTL はプッシュサービスでのメッセージ保持秒数。
	TTL int
	// Timeout は1件の配信リクエストのタイムアウト。
	Timeout time.Duration
}

// LogConfig はログ出力の設定。
type LogConfig struct {
	// Level はログレベル（debug, info, warn, error）。
	Level string
	// Format は "text" または "json"。
	Format string
	// File はローテーション付きで書き込むログファイル。空の場合は標準出力。
	File string
	// MaxSizeMB はローテーションするファイルサイズ。
	MaxSizeMB int
	// MaxBackups は保持する古いログファイルの数。
	MaxBackups int
	// MaxAgeDays は古いログファイルの保持日数。
	MaxAgeDays int
}

// Load は.envファイルと環境変数から設定を読み込む。
// .envファイルが存在しない場合は環境変数と既定値のみを使用する。
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf(".envファイルの読み込みに失敗 (%s): %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envファイルの確認に失敗 (%s): %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults は各設定キーの既定値を登録する。
func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8086")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_DSN", "/data/beasiswa.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("VAPID_PUBLIC_KEY", "")
	v.SetDefault("VAPID_PRIVATE_KEY", "")
	v.SetDefault("VAPID_SUBJECT", "mailto:admin@localhost")
	v.SetDefault("PUSH_TTL", 60*60*24)
	v.SetDefault("PUSH_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

// fromViper はviperの値からConfigを組み立てる。
func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Env:  strings.ToLower(v.GetString("ENV")),
		Port: v.GetString("PORT"),
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DB_DSN"),
		},
		JWTSecret: v.GetString("JWT_SECRET"),
		Push: PushConfig{
			VAPIDPublicKey:  v.GetString("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: v.GetString("VAPID_PRIVATE_KEY"),
			Subject:         v.GetString("VAPID_SUBJECT"),
			TTL:             v.GetInt("PUSH_TTL"),
			Timeout:         v.GetDuration("PUSH_TIMEOUT"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg
}

// IsDev は開発環境かどうかを返す。
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("未対応のデータベースドライバです: %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("DB_DSNが設定されていません")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRETが設定されていません")
	}
	if c.Push.TTL < 0 {
		return fmt.Errorf("PUSH_TTLが不正です: %d", c.Push.TTL)
	}
	return nil
}

// splitList はカンマ区切りの文字列を空要素を除いたスライスに変換する。
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
