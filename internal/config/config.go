// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ジョブ/ストア設定
	RedisURL      string // キューとステータスストアで共有するRedis接続URL
	MaxFileSize   int64  // 受け付ける入力ファイルの最大サイズ（バイト）
	JobTTLSeconds int    // ステータス/結果レコードの有効期限（秒）

	// 変換バックエンド設定
	HTMLToPDFPath         string // HTMLレンダラー実行ファイルのパス
	LibreOfficePath       string // LibreOffice実行ファイルのパス
	ConvertTimeoutSeconds int    // 1件の変換処理に許す最大時間（秒）

	// ワーカー設定
	WorkerConcurrency int // ワーカープロセス内の並列実行数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// ジョブ/ストア設定
		RedisURL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 5242880), // 5MB
		JobTTLSeconds: getEnvAsInt("JOB_TTL_SECONDS", 3600),

		// 変換バックエンド設定
		HTMLToPDFPath:         getEnv("HTML_PDF_PATH", "wkhtmltopdf"),
		LibreOfficePath:       getEnv("LIBREOFFICE_PATH", "libreoffice"),
		ConvertTimeoutSeconds: getEnvAsInt("CONVERT_TIMEOUT_SECONDS", 120),

		// ワーカー設定
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if c.JobTTLSeconds <= 0 {
		return fmt.Errorf("JOB_TTL_SECONDS must be positive")
	}
	if c.GinMode == "release" {
		if c.HTMLToPDFPath == "" {
			return fmt.Errorf("HTML_PDF_PATH is required in release mode")
		}
		if c.LibreOfficePath == "" {
			return fmt.Errorf("LIBREOFFICE_PATH is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
