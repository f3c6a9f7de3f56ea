/*
 * @module service/pipeline/pipeline
 * @description 仪表盘流水线：(数据集, 过滤条件, 排序) -> (过滤视图, 指标, 卡片, 图表, 表格, 导出字节)
 * @architecture 显式函数调用 - 每次交互完整重算，不保留中间状态
 * @stateFlow 过滤 -> 排序 -> 聚合 -> 展示 -> (可选)导出
 * @rules 空数据集与空结果只产生警告，图表与导出照常输出空内容；输入数据集不被修改
 * @dependencies service/filter, service/aggregate, service/presenter, service/export
 * @refs service/dashboard
 */

package pipeline

import (
	"context"
	"fmt"

	"sales-dashboard-service/service/aggregate"
	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/export"
	"sales-dashboard-service/service/filter"
	"sales-dashboard-service/service/presenter"
)

// 警告代码
const (
	WarnEmptyDataset = "empty_dataset"
	WarnEmptyResult  = "empty_result"
	WarnParseErrors  = "parse_errors"
)

// DefaultTopN 排行类图表默认条数
const DefaultTopN = 10

// Warning 非致命提示，前端需要展示给用户
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Request 一次流水线调用的输入
type Request struct {
	Criteria      filter.Criteria
	Sort          filter.SortSpec
	Page          int
	PageSize      int
	IncludeExport bool
}

// Result 一次流水线调用的输出
type Result struct {
	View     dataset.View
	Summary  *aggregate.Summary
	Cards    []presenter.Card
	Charts   []presenter.ChartSpec
	Table    *presenter.Table
	Warnings []Warning
	Export   *export.Artifact
}

// Pipeline 流水线
type Pipeline struct {
	formatter *presenter.Formatter
	exporter  *export.Exporter
	topN      int
}

// New 创建流水线
func New(formatter *presenter.Formatter, exporter *export.Exporter, topN int) *Pipeline {
	if formatter == nil {
		formatter = presenter.NewFormatter("")
	}
	if exporter == nil {
		exporter = export.NewExporter(nil)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Pipeline{formatter: formatter, exporter: exporter, topN: topN}
}

// Run 执行流水线；ds为nil时按空数据集处理
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset, req Request) (*Result, error) {
	if ds == nil {
		ds = dataset.Empty()
	}
	res := &Result{}

	if ds.Len() == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnEmptyDataset,
			Message: "数据集中没有数据行",
			Err:     &dataset.EmptyDatasetError{Stage: "load"},
		})
	} else if n := len(ds.ParseErrors()); n > 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnParseErrors,
			Message: fmt.Sprintf("%d个单元格无法解析，已按缺失值处理", n),
			Err:     ds.ParseErrors()[0],
		})
	}

	view := filter.Apply(ds.All(), req.Criteria)
	if ds.Len() > 0 && view.Len() == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnEmptyResult,
			Message: "没有符合筛选条件的数据",
			Err:     &dataset.EmptyDatasetError{Stage: "filter"},
		})
	}
	view = filter.Sort(view, req.Sort)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.View = view
	res.Summary = aggregate.Summarize(view, ds.Capabilities(), p.topN)
	res.Cards = p.formatter.Cards(res.Summary)
	res.Charts = p.formatter.Charts(res.Summary, p.topN)
	res.Table = presenter.NewTable(view, req.Page, req.PageSize)

	if req.IncludeExport {
		art, err := p.exporter.Export(ctx, view)
		if err != nil {
			return nil, fmt.Errorf("导出失败: %w", err)
		}
		res.Export = art
	}
	return res, nil
}

// Export 只执行过滤、排序与导出
func (p *Pipeline) Export(ctx context.Context, ds *dataset.Dataset, criteria filter.Criteria, sort filter.SortSpec) (*export.Artifact, error) {
	if ds == nil {
		ds = dataset.Empty()
	}
	view := filter.Sort(filter.Apply(ds.All(), criteria), sort)
	return p.exporter.Export(ctx, view)
}
