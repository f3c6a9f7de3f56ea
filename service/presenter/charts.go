/*
 * @module service/presenter/charts
 * @description 将分组合计与散点数据映射为图表规格，交给前端渲染
 * @architecture 纯映射 - 图表类型、坐标轴绑定、标题与数据载荷
 * @rules 数值四舍五入到2位小数；只输出数据集具备的图表；空视图输出空序列而不是省略图表
 * @dependencies service/aggregate, service/dataset
 * @refs api/controllers/dashboard_controller
 */

package presenter

import (
	"fmt"

	"sales-dashboard-service/service/aggregate"
	"sales-dashboard-service/service/dataset"
)

// ChartKind 图表类型
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
)

// Orientation 条形图方向
type Orientation string

const (
	Vertical   Orientation = "v"
	Horizontal Orientation = "h"
)

// ChartSpec 图表规格
type ChartSpec struct {
	Key         dataset.Feature `json:"key"`
	Kind        ChartKind       `json:"kind"`
	Title       string          `json:"title"`
	XAxis       string          `json:"x_axis,omitempty"`
	YAxis       string          `json:"y_axis,omitempty"`
	Orientation Orientation     `json:"orientation,omitempty"`
	Series      []Series        `json:"series"`
	Colors      []string        `json:"colors,omitempty"`
	ShowLegend  bool            `json:"show_legend"`
	ShowGrid    bool            `json:"show_grid"`
}

// Series 数据序列
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point 数据点；散点图使用X，其余图表使用Label
type Point struct {
	Label string   `json:"label"`
	X     *float64 `json:"x,omitempty"`
	Value float64  `json:"value"`
}

var (
	// 默认调色板
	defaultColors = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
	// 分类占比饼图使用的红蓝发散色
	rdBuColors = []string{
		"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7",
		"#f7f7f7", "#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
	}
)

// Charts 按固定顺序生成图表规格
func (f *Formatter) Charts(s *aggregate.Summary, topN int) []ChartSpec {
	var charts []ChartSpec

	if g, ok := s.Groups[dataset.FeatureMonthlySales]; ok {
		charts = append(charts, ChartSpec{
			Key:      dataset.FeatureMonthlySales,
			Kind:     ChartLine,
			Title:    "Monthly Sales Trend",
			XAxis:    "Month",
			YAxis:    g.ValueColumn,
			Series:   []Series{groupSeries(g)},
			Colors:   []string{"#1f77b4"},
			ShowGrid: true,
		})
	}
	if g, ok := s.Groups[dataset.FeatureTopProducts]; ok {
		charts = append(charts, ChartSpec{
			Key:         dataset.FeatureTopProducts,
			Kind:        ChartBar,
			Title:       fmt.Sprintf("Top %d %s by Sales", topN, plural(g.GroupColumn)),
			XAxis:       g.ValueColumn,
			YAxis:       g.GroupColumn,
			Orientation: Horizontal,
			Series:      []Series{groupSeries(g)},
			Colors:      []string{"#ff7f0e"},
			ShowGrid:    true,
		})
	}
	if g, ok := s.Groups[dataset.FeatureCategoryShare]; ok {
		charts = append(charts, ChartSpec{
			Key:        dataset.FeatureCategoryShare,
			Kind:       ChartPie,
			Title:      "Category-Wise Sales Share",
			Series:     []Series{groupSeries(g)},
			Colors:     rdBuColors,
			ShowLegend: true,
		})
	}
	for _, bar := range []struct {
		feature dataset.Feature
		title   string
		color   string
	}{
		{dataset.FeatureRegionSales, "Sales by Region", defaultColors[2]},
		{dataset.FeatureShipModeSales, "Sales by Ship Mode", defaultColors[4]},
	} {
		g, ok := s.Groups[bar.feature]
		if !ok {
			continue
		}
		charts = append(charts, ChartSpec{
			Key:         bar.feature,
			Kind:        ChartBar,
			Title:       bar.title,
			XAxis:       g.GroupColumn,
			YAxis:       g.ValueColumn,
			Orientation: Vertical,
			Series:      []Series{groupSeries(g)},
			Colors:      []string{bar.color},
			ShowGrid:    true,
		})
	}
	if g, ok := s.Groups[dataset.FeatureSubCategoryProfit]; ok {
		charts = append(charts, ChartSpec{
			Key:         dataset.FeatureSubCategoryProfit,
			Kind:        ChartBar,
			Title:       fmt.Sprintf("Top %d Sub-Categories by Profit", topN),
			XAxis:       g.ValueColumn,
			YAxis:       g.GroupColumn,
			Orientation: Horizontal,
			Series:      []Series{groupSeries(g)},
			Colors:      []string{defaultColors[3]},
			ShowGrid:    true,
		})
	}
	if s.Points != nil {
		points := make([]Point, len(s.Points))
		for i, p := range s.Points {
			x := aggregate.Round2(p.X)
			points[i] = Point{Label: p.Label, X: &x, Value: aggregate.Round2(p.Y)}
		}
		charts = append(charts, ChartSpec{
			Key:      dataset.FeatureSalesProfit,
			Kind:     ChartScatter,
			Title:    "Sales vs Profit",
			XAxis:    dataset.ColSales,
			YAxis:    dataset.ColProfit,
			Series:   []Series{{Name: "Orders", Points: points}},
			Colors:   []string{defaultColors[0]},
			ShowGrid: true,
		})
	}
	return charts
}

func groupSeries(g *aggregate.GroupSet) Series {
	points := make([]Point, len(g.Groups))
	for i, grp := range g.Groups {
		points[i] = Point{Label: grp.Key, Value: aggregate.Round2(grp.Value)}
	}
	return Series{Name: g.ValueColumn, Points: points}
}

func plural(column string) string {
	switch column {
	case dataset.ColProductName:
		return "Products"
	case dataset.ColSubCategory:
		return "Sub-Categories"
	default:
		return column
	}
}
