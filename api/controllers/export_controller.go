/*
 * @module api/controllers/export_controller
 * @description 导出控制器，将过滤后的数据以xlsx附件下载
 * @architecture MVC架构 - 控制器层
 * @rules 成功时直接写出文件字节，失败时返回统一JSON错误
 * @dependencies service/dashboard, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"sales-dashboard-service/service"
	"sales-dashboard-service/service/dashboard"
	"sales-dashboard-service/service/models"
)

// ExportController 导出控制器
type ExportController struct {
	dashboardService *dashboard.Service
}

// NewExportController 创建导出控制器实例
func NewExportController() *ExportController {
	return &ExportController{dashboardService: service.GlobalDashboardService}
}

// Export 导出过滤后的数据
// @Summary 导出Excel
// @Description 按筛选与排序条件导出filtered_sales_data.xlsx
// @Tags 仪表盘
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body models.ExportRequest true "导出条件"
// @Success 200 {file} file "xlsx文件"
// @Failure 400 {object} APIResponse
// @Router /dashboard/export [post]
func (c *ExportController) Export(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}

	art, err := c.dashboardService.Export(r.Context(), req)
	if err != nil {
		render.Render(w, r, QueryErrorResponse(err))
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Export-Rows", strconv.Itoa(art.Rows))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		slog.Warn("写出导出文件失败", "error", err)
	}
}
