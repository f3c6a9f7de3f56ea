/*
 * @module service/init
 * @description 服务初始化模块，按配置组装加载器、会话存储、导出缓存、流水线、事件发布与定时刷新
 * @architecture 分层架构 - 服务层
 * @stateFlow 应用启动时执行初始化流程：配置 -> 基础设施 -> 业务服务 -> 加载默认数据集 -> 启动调度器
 * @rules 默认数据集加载失败不阻止启动；Redis不可用时退回内存缓存；可选组件未配置时不启用
 * @dependencies service/config, service/dashboard, service/event, service/export, service/monitoring, service/scheduler
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sales-dashboard-service/service/config"
	"sales-dashboard-service/service/dashboard"
	"sales-dashboard-service/service/event"
	"sales-dashboard-service/service/export"
	"sales-dashboard-service/service/loader"
	"sales-dashboard-service/service/monitoring"
	"sales-dashboard-service/service/pipeline"
	"sales-dashboard-service/service/presenter"
	"sales-dashboard-service/service/scheduler"
	"sales-dashboard-service/service/session"
)

var (
	GlobalConfig           *config.Config
	GlobalMetrics          *monitoring.Metrics
	GlobalBroker           *event.Broker
	GlobalDashboardService *dashboard.Service
	GlobalHealthChecker    *monitoring.HealthChecker
	GlobalReloadScheduler  *scheduler.ReloadScheduler

	closers []func() error
)

// Init 初始化全部服务；reg为nil时使用Prometheus默认注册表
func Init(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) error {
	GlobalConfig = cfg
	GlobalMetrics = monitoring.NewMetrics(reg)
	GlobalReloadScheduler = nil
	GlobalBroker = event.NewBroker()
	closers = nil

	publisher := initPublisher(cfg)
	cache := initExportCache(cfg, GlobalMetrics)

	store := session.NewStore()
	GlobalDashboardService = dashboard.NewService(dashboard.Options{
		Loader: loader.NewLoader(loader.Options{
			DefaultPath: cfg.Dataset.DefaultPath,
			DateColumns: cfg.Dataset.DateColumns,
		}),
		Store: store,
		Pipeline: pipeline.New(
			presenter.NewFormatter(cfg.Dashboard.CurrencySymbol),
			export.NewExporter(cache),
			cfg.Dashboard.TopN,
		),
		Publisher:      publisher,
		Metrics:        GlobalMetrics,
		PageSize:       cfg.Dashboard.PageSize,
		MaxUploadBytes: cfg.Dataset.MaxUploadBytes(),
	})

	GlobalHealthChecker = monitoring.NewHealthChecker(5 * time.Second)
	GlobalHealthChecker.Register("dataset", true, func(context.Context) error {
		if !store.Loaded() {
			return errors.New("尚未加载数据集")
		}
		return nil
	})
	if rc, ok := cache.(*export.RedisCache); ok {
		GlobalHealthChecker.Register("redis", false, rc.Ping)
	}

	if _, err := GlobalDashboardService.LoadDefault(ctx); err != nil {
		slog.Warn("默认数据集加载失败，等待上传", "path", cfg.Dataset.DefaultPath, "error", err)
	}

	if cfg.Scheduler.ReloadCron != "" {
		s, err := scheduler.NewReloadScheduler(cfg.Scheduler.ReloadCron, GlobalDashboardService.RefreshDefault, time.Minute)
		if err != nil {
			return err
		}
		if err := s.Start(); err != nil {
			return fmt.Errorf("启动定时刷新失败: %w", err)
		}
		GlobalReloadScheduler = s
	}

	slog.Info("服务初始化完成",
		"export_cache", cfg.Export.Cache,
		"kafka", cfg.Kafka.Enabled(),
		"reload_cron", cfg.Scheduler.ReloadCron)
	return nil
}

// initPublisher SSE广播始终启用，配置了Kafka时同时写入审计主题
func initPublisher(cfg *config.Config) event.Publisher {
	if !cfg.Kafka.Enabled() {
		return GlobalBroker
	}
	kp := event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	closers = append(closers, kp.Close)
	slog.Info("Kafka审计事件已启用", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return event.Multi{GlobalBroker, kp}
}

// initExportCache 按配置创建导出缓存
func initExportCache(cfg *config.Config, obs export.Observer) export.Cache {
	switch cfg.Export.Cache {
	case config.CacheNone:
		return export.NoopCache{}
	case config.CacheRedis:
		rc, err := export.NewRedisCache(export.RedisOptions{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Export.CacheTTL, obs)
		if err == nil {
			closers = append(closers, rc.Close)
			return rc
		}
		slog.Warn("Redis不可用，导出缓存退回内存", "host", cfg.Redis.Host, "error", err)
	}
	return export.NewMemoryCache(cfg.Export.CacheTTL, cfg.Export.MaxEntries, obs)
}

// Shutdown 停止调度器并释放外部连接
func Shutdown() {
	if GlobalReloadScheduler != nil {
		GlobalReloadScheduler.Stop()
		GlobalReloadScheduler = nil
	}
	if GlobalBroker != nil {
		GlobalBroker.Close()
	}
	for _, c := range closers {
		if err := c(); err != nil {
			slog.Warn("释放资源失败", "error", err)
		}
	}
	closers = nil
}
