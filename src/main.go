package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resource-share/src/config"
	"resource-share/src/database"
	"resource-share/src/domain"
	"resource-share/src/infrastructure/memory"
	"resource-share/src/infrastructure/repository"
	"resource-share/src/interface/handler"
	"resource-share/src/logger"
	"resource-share/src/metrics"
	"resource-share/src/middleware"
	"resource-share/src/ratelimit"
	"resource-share/src/routes"
	"resource-share/src/service"
	"resource-share/src/storage"
	"resource-share/src/usecase"
	"resource-share/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const usage = `usage: resource-share [command]

commands:
  serve     start the HTTP API (default)
  migrate   apply the database schema
  backfill  set category_id on resources that only carry a category name`

// stores リポジトリ一式
type stores struct {
	resources  domain.ResourceRepository
	categories domain.CategoryRepository
	requests   domain.ResourceRequestRepository
	health     routes.HealthChecker
	db         *database.DB
}

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// 設定を読み込み
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "設定が不正です: %v\n", err)
		os.Exit(1)
	}

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Directory); err != nil {
		panic(fmt.Sprintf("ロガーの初期化に失敗: %v", err))
	}
	defer logger.CloseLogger()

	var err error
	switch command {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "backfill":
		err = backfill(cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		logger.CloseLogger()
		os.Exit(2)
	}

	if err != nil {
		logger.Log.WithError(err).WithField("command", command).Error("コマンドの実行に失敗しました")
		logger.CloseLogger()
		os.Exit(1)
	}
}

// openStores STORE_DRIVER に応じてリポジトリを組み立てる
func openStores(cfg *config.Config, log *logrus.Logger) (*stores, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("メモリストアを使用します。再起動するとデータは失われます")
		return &stores{
			resources:  memory.NewResourceStore(),
			categories: memory.NewCategoryStore(),
			requests:   memory.NewRequestStore(),
		}, nil
	}

	db, err := database.NewDB(&database.Config{
		URL:             cfg.Store.URL,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, err
	}

	return &stores{
		resources:  repository.NewResourceRepository(db, log),
		categories: repository.NewCategoryRepository(db, log),
		requests:   repository.NewRequestRepository(db, log),
		health:     db.Health,
		db:         db,
	}, nil
}

func (s *stores) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Log.WithError(err).Warn("データベース接続のクローズに失敗しました")
		}
	}
}

func migrate(cfg *config.Config) error {
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("migrate requires STORE_DRIVER=postgres")
	}

	s, err := openStores(cfg, logger.Log)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return s.db.Migrate(ctx)
}

func backfill(cfg *config.Config) error {
	s, err := openStores(cfg, logger.Log)
	if err != nil {
		return err
	}
	defer s.Close()

	categoryUsecase := usecase.NewCategoryUsecase(s.categories, logger.Log, nil)
	resourceUsecase := usecase.NewResourceUsecase(s.resources, s.categories, categoryUsecase, logger.Log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := resourceUsecase.BackfillCategoryIDs(ctx)
	if err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"categories": report.Categories,
		"updated":    report.Updated,
	}).Info("category_id の補完が完了しました")
	return nil
}

// newLimiter Redisが設定されていれば共有ストア、なければプロセス内で数える
func newLimiter(cfg *config.Config, log *logrus.Logger) (ratelimit.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.SweepInterval), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithField("addr", cfg.Redis.Addr).Info("Redisでレート制限を行います")
	return ratelimit.NewRedisLimiter(client, "resource-share:ratelimit:"), nil
}

func serve(cfg *config.Config) error {
	log := logger.Log
	log.Info("アプリケーションを開始しています")

	s, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.db != nil && cfg.Store.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := s.db.Migrate(ctx)
		cancel()
		if err != nil {
			return err
		}
	}

	limiter, err := newLimiter(cfg, log)
	if err != nil {
		return err
	}
	if limiter != nil {
		defer limiter.Close()
	}

	rec := metrics.NewRecorder()
	v := validator.NewCustomValidator()

	categoryUsecase := usecase.NewCategoryUsecase(s.categories, log, rec)
	resourceUsecase := usecase.NewResourceUsecase(s.resources, s.categories, categoryUsecase, log, rec)
	requestUsecase := usecase.NewRequestUsecase(s.requests, log, rec)
	statsUsecase := usecase.NewStatsUsecase(s.resources, s.categories, s.requests, log, rec)
	authService := service.NewAdminAuthService(cfg.Auth, service.NewJWTService(cfg.Auth), log, rec)
	defer authService.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	deps := routes.Dependencies{
		ResourceHandler: handler.NewResourceHandler(resourceUsecase, v, log),
		CategoryHandler: handler.NewCategoryHandler(categoryUsecase, v, log),
		RequestHandler:  handler.NewRequestHandler(requestUsecase, v, log),
		AdminHandler:    handler.NewAdminHandler(authService, statsUsecase, v, log),
		AuthService:     authService,
		Limiter:         limiter,
		Metrics:         rec,
		Health:          s.health,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		APIPolicy: middleware.RateLimitPolicy{
			Name:        "api",
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
		},
		SubmitPolicy: middleware.RateLimitPolicy{
			Name:        "submit",
			MaxRequests: cfg.RateLimit.SubmitRequests,
			Window:      cfg.RateLimit.SubmitWindow,
		},
	}
	routes.SetupRoutes(r, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// S3アップローダーを初期化（設定が有効な場合）
	var uploader *storage.LogUploader
	if cfg.Log.UploadEnabled {
		uploader, err = storage.NewLogUploader(cfg.S3, log)
		if err != nil {
			log.WithError(err).Error("S3アップローダーの初期化に失敗")
		} else {
			go uploader.Run(ctx, cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		log.Info("シャットダウンシグナルを受信しました")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("サーバーのシャットダウンに失敗しました")
	}

	// 最後のログアップロードを実行
	if uploader != nil {
		log.Info("最後のログアップロードを実行中...")
		if err := logger.Rotate(); err != nil {
			log.WithError(err).Warn("ログファイルの切り替えに失敗")
		}
		if _, err := uploader.UploadOldLogs(shutdownCtx, cfg.Log.Directory, 0); err != nil {
			log.WithError(err).Error("最後のログアップロードに失敗")
		}
	}

	log.Info("サーバーを停止しました")
	return nil
}
