package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"sales-dashboard-service/api"
	_ "sales-dashboard-service/docs"
	"sales-dashboard-service/logger"
	"sales-dashboard-service/service"
	"sales-dashboard-service/service/config"
)

// @title 销售数据仪表盘服务 API
// @version 1.0
// @description 销售数据过滤、聚合与导出服务，为前端仪表盘提供指标卡片、图表数据与Excel导出
// @BasePath /
func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.Logging.Level)

	initCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = service.Init(initCtx, cfg, nil)
	cancel()
	if err != nil {
		slog.Error("服务初始化失败", "error", err)
		os.Exit(1)
	}
	defer service.Shutdown()

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if cfg.Server.BaseContext != "" {
		mux.Route(cfg.Server.BaseContext, func(r chi.Router) {
			api.InitRoute(r)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+cfg.Server.Port, mux)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("收到退出信号，正在关闭服务")
		if err := s.GracefulStop(); err != nil {
			slog.Warn("关闭服务失败", "error", err)
		}
	}()

	slog.Info("服务启动", "port", cfg.Server.Port, "base_context", cfg.Server.BaseContext)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}
