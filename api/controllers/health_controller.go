/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供存活与就绪检查
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程
 * @rules 存活检查只表示进程可响应；就绪检查要求已加载数据集，Redis等可选组件失败只告警
 * @dependencies service/monitoring, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"sales-dashboard-service/service"
	"sales-dashboard-service/service/monitoring"
)

const (
	serviceName    = "sales-dashboard-service"
	serviceVersion = "1.0.0"
)

// HealthController 健康检查控制器
type HealthController struct {
	checker *monitoring.HealthChecker
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController() *HealthController {
	return &HealthController{checker: service.GlobalHealthChecker}
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status    string                   `json:"status" example:"ok"`
	Timestamp time.Time                `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Version   string                   `json:"version" example:"1.0.0"`
	Service   string                   `json:"service" example:"sales-dashboard-service"`
	Checks    *monitoring.HealthStatus `json:"checks,omitempty"`
}

// Health 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Service:   serviceName,
	}

	render.JSON(w, r, response)
}

// Ready 就绪检查
// @Summary 就绪检查
// @Description 检查服务是否就绪（已加载数据集）
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Service:   serviceName,
	}

	if c.checker != nil {
		status := c.checker.CheckOverallHealth(r.Context())
		response.Checks = status
		if !status.Healthy() {
			response.Status = "not_ready"
			render.Status(r, http.StatusServiceUnavailable)
		}
	}

	render.JSON(w, r, response)
}
