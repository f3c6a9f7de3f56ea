/*
 * @module api/controllers/dataset_controller
 * @description 数据集控制器，提供当前数据集查询、文件上传与默认资源重新加载
 * @architecture MVC架构 - 控制器层
 * @stateFlow multipart上传 -> 仪表盘服务加载 -> 替换会话数据集 -> 返回数据集摘要
 * @rules 上传字段名为file，可选charset；加载失败按错误类型返回4xx且不影响当前数据集
 * @dependencies service/dashboard, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"sales-dashboard-service/service"
	"sales-dashboard-service/service/dashboard"
)

// 解析multipart时保留在内存中的上限，超出部分写入临时文件
const multipartMemory = 8 << 20

// DatasetController 数据集控制器
type DatasetController struct {
	dashboardService *dashboard.Service
}

// NewDatasetController 创建数据集控制器实例
func NewDatasetController() *DatasetController {
	return &DatasetController{dashboardService: service.GlobalDashboardService}
}

// GetCurrent 获取当前数据集摘要
// @Summary 当前数据集
// @Description 返回当前会话数据集的列、行数、可用功能与解析警告
// @Tags 数据集
// @Produce json
// @Success 200 {object} APIResponse{data=models.DatasetInfo}
// @Failure 404 {object} APIResponse
// @Router /datasets/current [get]
func (c *DatasetController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	info := c.dashboardService.Current()
	if info == nil {
		render.Render(w, r, NotFoundResponse("尚未加载数据集", nil))
		return
	}
	render.Render(w, r, SuccessResponse("获取数据集成功", info))
}

// Upload 上传数据文件
// @Summary 上传数据集
// @Description 上传CSV/TSV/XLSX文件替换当前数据集
// @Tags 数据集
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "数据文件"
// @Param charset formData string false "CSV字符集，默认utf-8"
// @Success 200 {object} APIResponse{data=models.DatasetInfo}
// @Failure 400 {object} APIResponse
// @Failure 413 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /datasets/upload [post]
func (c *DatasetController) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Render(w, r, LoadErrorResponse(c.dashboardService.RejectOversizedUpload(r.Context(), "", tooLarge.Limit)))
			return
		}
		render.Render(w, r, BadRequestResponse("请求不是有效的multipart表单", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, BadRequestResponse("缺少上传文件", err))
		return
	}
	defer file.Close()

	info, err := c.dashboardService.Upload(r.Context(), header.Filename, r.FormValue("charset"), file)
	if err != nil {
		render.Render(w, r, LoadErrorResponse(err))
		return
	}
	render.Render(w, r, SuccessResponse("上传成功", info))
}

// Reload 重新加载默认资源
// @Summary 重新加载默认数据集
// @Description 重新读取默认数据文件并替换当前数据集
// @Tags 数据集
// @Produce json
// @Success 200 {object} APIResponse{data=models.DatasetInfo}
// @Failure 404 {object} APIResponse
// @Router /datasets/reload [post]
func (c *DatasetController) Reload(w http.ResponseWriter, r *http.Request) {
	info, err := c.dashboardService.Reload(r.Context())
	if err != nil {
		render.Render(w, r, LoadErrorResponse(err))
		return
	}
	render.Render(w, r, SuccessResponse("重新加载成功", info))
}

// RejectOversized 请求体超过上传限制时按加载失败记录，供请求体大小限制中间件回调
func (c *DatasetController) RejectOversized(r *http.Request, limit int64) render.Renderer {
	return LoadErrorResponse(c.dashboardService.RejectOversizedUpload(r.Context(), "", limit))
}
