// Package main は変換ワーカーのエントリーポイントです。
// キューからジョブを取り出し、変換バックエンドを呼び出して
// 結果をステータスストアへ書き込みます。
package main

import (
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/pdf-mill/internal/config"
	"github.com/yourusername/pdf-mill/internal/convert"
	"github.com/yourusername/pdf-mill/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(opt)

	store := jobs.NewStore(redisClient, time.Duration(cfg.JobTTLSeconds)*time.Second)

	timeout := time.Duration(cfg.ConvertTimeoutSeconds) * time.Second
	backends := convert.Backends{
		HTML:   convert.NewHTMLConverter(cfg.HTMLToPDFPath, timeout),
		Office: convert.NewOfficeConverter(cfg.LibreOfficePath, timeout),
	}

	manager, err := jobs.NewWorkerManager(cfg, backends, store, log.Default())
	if err != nil {
		log.Fatalf("Failed to init job manager: %v", err)
	}

	log.Printf("Starting worker (redis: %s, ttl: %ds, concurrency: %d)",
		cfg.RedisURL, cfg.JobTTLSeconds, cfg.WorkerConcurrency)

	// キュー/ストアへ接続できない状態で動き続けても状態を報告できないため、
	// サーバーが止まったらプロセスごと終了して再起動に任せる
	if err := manager.Run(); err != nil {
		log.Fatalf("Worker stopped with error: %v", err)
	}
}
