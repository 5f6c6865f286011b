// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/pdf-mill/internal/config"
	"github.com/yourusername/pdf-mill/internal/convert"
	"github.com/yourusername/pdf-mill/internal/jobs"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Redisクライアントはプロセス起動時に一度だけ初期化し、
	// ストアとヘルスチェックで共有する
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(opt)

	store := jobs.NewStore(redisClient, time.Duration(cfg.JobTTLSeconds)*time.Second)

	timeout := time.Duration(cfg.ConvertTimeoutSeconds) * time.Second
	htmlRenderer := convert.NewHTMLConverter(cfg.HTMLToPDFPath, timeout)

	// APIプロセスはキュー投入専用。ワーカーは cmd/worker が別プロセスで動かす。
	manager, err := jobs.NewManager(cfg, store, log.Default())
	if err != nil {
		log.Fatalf("Failed to init job manager: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, cfg, redisClient, store, manager, htmlRenderer)

	// サーバーの起動（SIGINT/SIGTERMでグレースフルに停止）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Printf("Job manager shutdown error: %v", err)
	}
}

// handleRoot はサービス情報を返すルートエンドポイントのハンドラーです。
func handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "pdf-mill",
		"version": "0.1.0",
		"endpoints": gin.H{
			"health":           "/health",
			"sync_conversion":  "/api/convert",
			"async_conversion": "/api/convert/async",
			"job_status":       "/api/jobs/{job_id}",
			"job_result":       "/api/jobs/{job_id}/result",
		},
	})
}

// healthHandler はRedis疎通込みのヘルスチェックハンドラーを返します。
func healthHandler(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"redis":  "disconnected",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"redis":  "connected",
		})
	}
}

// setupRoutes は API グループの配線を行います。
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	redisClient *redis.Client,
	store jobs.Store,
	manager *jobs.Manager,
	htmlRenderer convert.Converter,
) {
	router.GET("/", handleRoot)
	router.GET("/health", healthHandler(redisClient))

	api := router.Group("/api")
	{
		// 小さなHTMLは同期変換、それ以外はジョブとして投入する
		api.POST("/convert", convert.ConvertHandler(htmlRenderer))
		api.POST("/convert/async", jobs.SubmitHandler(manager, cfg.MaxFileSize))

		jobRoutes := api.Group("/jobs")
		{
			jobRoutes.GET("/:id", jobs.StatusHandler(store))
			jobRoutes.GET("/:id/result", jobs.ResultHandler(store))
			jobRoutes.DELETE("/:id", jobs.DeleteHandler(store))
		}
	}
}
