/*
 * @module api/controllers/dashboard_controller
 * @description 仪表盘控制器，提供筛选可选值与仪表盘查询
 * @architecture MVC架构 - 控制器层
 * @stateFlow 请求体 -> 筛选条件 -> 流水线 -> 指标卡片/图表/表格
 * @rules 空结果不是错误，以warnings返回；筛选条件格式错误返回400
 * @dependencies service/dashboard, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"sales-dashboard-service/service"
	"sales-dashboard-service/service/dashboard"
	"sales-dashboard-service/service/models"
)

// DashboardController 仪表盘控制器
type DashboardController struct {
	dashboardService *dashboard.Service
}

// NewDashboardController 创建仪表盘控制器实例
func NewDashboardController() *DashboardController {
	return &DashboardController{dashboardService: service.GlobalDashboardService}
}

// GetOptions 获取筛选可选值
// @Summary 筛选可选值
// @Description 返回区域、类别、客户细分、配送方式的可选值以及订单日期范围
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} APIResponse{data=models.FilterOptions}
// @Router /dashboard/options [get]
func (c *DashboardController) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, SuccessResponse("获取筛选项成功", c.dashboardService.Options()))
}

// Query 仪表盘查询
// @Summary 仪表盘查询
// @Description 按筛选条件计算指标卡片、图表与数据表格
// @Tags 仪表盘
// @Accept json
// @Produce json
// @Param request body models.QueryRequest true "查询条件"
// @Success 200 {object} APIResponse{data=models.QueryResponse}
// @Failure 400 {object} APIResponse
// @Router /dashboard/query [post]
func (c *DashboardController) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	resp, err := c.dashboardService.Query(r.Context(), req)
	if err != nil {
		render.Render(w, r, QueryErrorResponse(err))
		return
	}
	render.Render(w, r, SuccessResponse("查询成功", resp))
}
