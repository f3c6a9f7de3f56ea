/*
 * @module service/models/dashboard
 * @description 仪表盘接口的请求与响应模型
 * @architecture 分层架构 - 数据模型层
 * @rules 日期使用YYYY-MM-DD；空的筛选列表表示不过滤该列
 * @dependencies service/dataset, service/presenter, service/aggregate
 * @refs api/controllers, service/dashboard
 */

package models

import (
	"time"

	"sales-dashboard-service/service/aggregate"
	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/presenter"
)

// FilterRequest 筛选条件
type FilterRequest struct {
	Regions    []string `json:"regions,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Segments   []string `json:"segments,omitempty"`
	ShipModes  []string `json:"ship_modes,omitempty"`
	StartDate  string   `json:"start_date,omitempty" example:"2023-01-01"`
	EndDate    string   `json:"end_date,omitempty" example:"2023-12-31"`
	// 其他列的成员筛选，键为列名
	Columns map[string][]string `json:"columns,omitempty"`
}

// SortRequest 排序键
type SortRequest struct {
	Column     string `json:"column" example:"Sales"`
	Descending bool   `json:"descending"`
}

// QueryRequest 仪表盘查询请求
type QueryRequest struct {
	Filters  FilterRequest `json:"filters"`
	Sort     []SortRequest `json:"sort,omitempty"`
	Page     int           `json:"page,omitempty" example:"1"`
	PageSize int           `json:"page_size,omitempty" example:"50"`
}

// ExportRequest 导出请求
type ExportRequest struct {
	Filters FilterRequest `json:"filters"`
	Sort    []SortRequest `json:"sort,omitempty"`
}

// Warning 非致命提示
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryResponse 仪表盘查询响应
type QueryResponse struct {
	DatasetID string                `json:"dataset_id"`
	Rows      int                   `json:"rows"`
	Summary   *aggregate.Summary    `json:"summary"`
	Cards     []presenter.Card      `json:"cards"`
	Charts    []presenter.ChartSpec `json:"charts"`
	Table     *presenter.Table      `json:"table"`
	Warnings  []Warning             `json:"warnings"`
}

// DatasetInfo 当前数据集摘要
type DatasetInfo struct {
	ID           string               `json:"id"`
	Source       string               `json:"source"`
	Format       dataset.Format       `json:"format"`
	Origin       string               `json:"origin"`
	LoadedAt     time.Time            `json:"loaded_at"`
	Rows         int                  `json:"rows"`
	Columns      []ColumnInfo         `json:"columns"`
	Capabilities []dataset.Feature    `json:"capabilities"`
	ParseErrors  []dataset.ParseError `json:"parse_errors"`
	Warnings     []Warning            `json:"warnings"`
}

// ColumnInfo 列信息
type ColumnInfo struct {
	Name string       `json:"name"`
	Kind dataset.Kind `json:"kind"`
}

// FilterOptions 筛选控件的可选值
type FilterOptions struct {
	Regions    []string   `json:"regions"`
	Categories []string   `json:"categories"`
	Segments   []string   `json:"segments"`
	ShipModes  []string   `json:"ship_modes"`
	DateRange  *DateRange `json:"date_range,omitempty"`
}

// DateRange 日期范围
type DateRange struct {
	Min string `json:"min" example:"2023-01-01"`
	Max string `json:"max" example:"2023-12-31"`
}
