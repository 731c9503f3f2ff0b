package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/crm_reports/config"
	"github.com/BerniceZTT/crm_reports/repository"
	"github.com/BerniceZTT/crm_reports/routes"
	"github.com/BerniceZTT/crm_reports/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 初始化日志
	utils.InitLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		utils.Logger.Fatal().Err(err).Msg("配置无效")
	}

	// 设置Gin模式
	gin.SetMode(cfg.Mode)

	// 初始化数据存储
	store, err := openStore(cfg)
	if err != nil {
		utils.Logger.Fatal().Err(err).Str("backend", cfg.DataBackend).Msg("初始化数据存储失败")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	}()

	router := routes.NewRouter(cfg, store)

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
		return
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}

// openStore 按配置选择数据后端
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DataBackend == config.BackendMemory {
		var seed repository.Seed
		if cfg.SeedFile != "" {
			var err error
			if seed, err = repository.LoadSeed(cfg.SeedFile); err != nil {
				return nil, err
			}
		}
		utils.Logger.Info().Str("seed", cfg.SeedFile).Msg("使用内存数据存储")
		return repository.NewMemoryStore(seed), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := repository.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDB, cfg.Report.QueryTimeout)
	if err != nil {
		return nil, err
	}

	// 初始化系统数据
	utils.Logger.Info().Msg("开始系统初始化...")
	if err := store.InitializeCollections(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化数据库集合失败")
	}
	utils.Logger.Info().Msg("系统初始化完成")
	return store, nil
}
