package aggregate

import (
	"math"

	"sales-dashboard-service/service/dataset"
)

// GroupSet 一个图表使用的分组合计及其绑定列
type GroupSet struct {
	GroupColumn string  `json:"group_column"`
	ValueColumn string  `json:"value_column"`
	Groups      []Group `json:"groups"`
}

// Point 散点图中的一个点
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Summary 过滤视图上的全部聚合结果，只包含数据集具备的功能
type Summary struct {
	Rows    int                           `json:"rows"`
	Metrics map[dataset.Feature]float64   `json:"metrics"`
	Groups  map[dataset.Feature]*GroupSet `json:"groups"`
	Points  []Point                       `json:"points,omitempty"`
}

// Metric 取指标值
func (s *Summary) Metric(f dataset.Feature) (float64, bool) {
	v, ok := s.Metrics[f]
	return v, ok
}

// groupSpec 分组类图表的列绑定
type groupSpec struct {
	feature dataset.Feature
	group   []string // 按顺序选第一个存在的列
	value   string
	topN    bool
}

var groupSpecs = []groupSpec{
	{feature: dataset.FeatureMonthlySales, group: []string{dataset.ColOrderDate}, value: dataset.ColSales},
	{feature: dataset.FeatureTopProducts, group: []string{dataset.ColProductName, dataset.ColSubCategory}, value: dataset.ColSales, topN: true},
	{feature: dataset.FeatureCategoryShare, group: []string{dataset.ColCategory}, value: dataset.ColSales},
	{feature: dataset.FeatureRegionSales, group: []string{dataset.ColRegion}, value: dataset.ColSales},
	{feature: dataset.FeatureShipModeSales, group: []string{dataset.ColShipMode}, value: dataset.ColSales},
	{feature: dataset.FeatureSubCategoryProfit, group: []string{dataset.ColSubCategory}, value: dataset.ColProfit, topN: true},
}

// Summarize 按能力表计算仪表盘需要的指标、分组与散点
func Summarize(v dataset.View, caps dataset.Capabilities, topN int) *Summary {
	s := &Summary{
		Rows:    v.Len(),
		Metrics: make(map[dataset.Feature]float64),
		Groups:  make(map[dataset.Feature]*GroupSet),
	}

	if caps.Has(dataset.FeatureTotalSales) {
		s.Metrics[dataset.FeatureTotalSales] = Round2(Total(v, dataset.ColSales))
	}
	if caps.Has(dataset.FeatureTotalProfit) {
		s.Metrics[dataset.FeatureTotalProfit] = Round2(Total(v, dataset.ColProfit))
	}
	if caps.Has(dataset.FeatureTotalQuantity) {
		s.Metrics[dataset.FeatureTotalQuantity] = math.Trunc(Total(v, dataset.ColQuantity))
	}
	if caps.Has(dataset.FeatureProfitMargin) {
		s.Metrics[dataset.FeatureProfitMargin] = Ratio(v, dataset.ColProfit, dataset.ColSales)
	}
	if caps.Has(dataset.FeatureTotalOrders) {
		s.Metrics[dataset.FeatureTotalOrders] = float64(DistinctCount(v, dataset.ColOrderID))
	}
	if caps.Has(dataset.FeatureAverageDiscount) {
		// 以百分比表示
		s.Metrics[dataset.FeatureAverageDiscount] = Round2(Mean(v, dataset.ColDiscount) * 100)
	}

	for _, spec := range groupSpecs {
		if !caps.Has(spec.feature) {
			continue
		}
		column := firstPresent(v, spec.group)
		if column == "" {
			continue
		}
		groups := GroupSum(v, column, spec.value)
		if spec.topN {
			groups = TopN(groups, topN)
		}
		s.Groups[spec.feature] = &GroupSet{GroupColumn: column, ValueColumn: spec.value, Groups: groups}
	}

	if caps.Has(dataset.FeatureSalesProfit) {
		s.Points = scatter(v, dataset.ColSales, dataset.ColProfit, dataset.ColOrderID)
	}
	return s
}

func firstPresent(v dataset.View, columns []string) string {
	for _, c := range columns {
		if v.HasColumn(c) {
			return c
		}
	}
	return ""
}

// scatter 每行一个点，任一坐标缺失的行跳过
func scatter(v dataset.View, xColumn, yColumn, labelColumn string) []Point {
	points := make([]Point, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		x, okX := v.Value(i, xColumn).Float()
		y, okY := v.Value(i, yColumn).Float()
		if !okX || !okY {
			continue
		}
		points = append(points, Point{Label: v.Value(i, labelColumn).String(), X: x, Y: y})
	}
	return points
}
