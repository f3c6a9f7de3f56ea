/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理，数据集状态由仪表盘服务持有
 * @rules 统一错误处理和响应格式；上传接口限制请求体大小，超限按加载失败记录
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, main.go
 */

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"sales-dashboard-service/api/controllers"
	apimw "sales-dashboard-service/api/middleware"
	"sales-dashboard-service/service"
)

// InitRoute 初始化所有API路由
func InitRoute(r chi.Router) {
	// 基础中间件
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	allowedOrigins := []string{"*"}
	if cfg := service.GlobalConfig; cfg != nil && len(cfg.Server.AllowedOrigins) > 0 {
		allowedOrigins = cfg.Server.AllowedOrigins
	}

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Rows"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController()
	r.Get("/sse/dataset", eventController.HandleSSE)

	// 数据集管理
	r.Route("/datasets", func(r chi.Router) {
		datasetController := controllers.NewDatasetController()
		r.Get("/current", datasetController.GetCurrent)
		r.Post("/reload", datasetController.Reload)

		var maxUpload int64
		if cfg := service.GlobalConfig; cfg != nil {
			maxUpload = cfg.Dataset.MaxUploadBytes()
		}
		bodyLimit := apimw.NewBodyLimit(maxUpload, datasetController.RejectOversized)
		r.With(bodyLimit.Handler).Post("/upload", datasetController.Upload)
	})

	// 仪表盘
	r.Route("/dashboard", func(r chi.Router) {
		dashboardController := controllers.NewDashboardController()
		r.Get("/options", dashboardController.GetOptions)
		r.Post("/query", dashboardController.Query)

		exportController := controllers.NewExportController()
		r.Post("/export", exportController.Export)
	})
}
