/*
 * @module service/dataset/capabilities
 * @description 功能能力表，加载后按列是否存在一次性判定各个过滤器、指标和图表是否可用
 * @architecture 声明式配置
 * @rules 每个功能独立降级，缺列只关闭对应功能
 */

package dataset

// Feature 仪表盘功能
type Feature string

const (
	FeatureFilterRegion    Feature = "filter.region"
	FeatureFilterCategory  Feature = "filter.category"
	FeatureFilterSegment   Feature = "filter.segment"
	FeatureFilterShipMode  Feature = "filter.ship_mode"
	FeatureFilterOrderDate Feature = "filter.order_date"

	FeatureTotalSales      Feature = "metric.total_sales"
	FeatureTotalProfit     Feature = "metric.total_profit"
	FeatureTotalQuantity   Feature = "metric.total_quantity"
	FeatureProfitMargin    Feature = "metric.profit_margin"
	FeatureTotalOrders     Feature = "metric.total_orders"
	FeatureAverageDiscount Feature = "metric.average_discount"

	FeatureMonthlySales      Feature = "chart.monthly_sales"
	FeatureTopProducts       Feature = "chart.top_products"
	FeatureCategoryShare     Feature = "chart.category_share"
	FeatureRegionSales       Feature = "chart.region_sales"
	FeatureShipModeSales     Feature = "chart.ship_mode_sales"
	FeatureSubCategoryProfit Feature = "chart.sub_category_profit"
	FeatureSalesProfit       Feature = "chart.sales_vs_profit"
)

// requirement 功能所需的列：All全部存在，AnyOf至少存在一个（为空时不检查）
type requirement struct {
	feature Feature
	all     []string
	anyOf   []string
}

var requirements = []requirement{
	{feature: FeatureFilterRegion, all: []string{ColRegion}},
	{feature: FeatureFilterCategory, all: []string{ColCategory}},
	{feature: FeatureFilterSegment, all: []string{ColSegment}},
	{feature: FeatureFilterShipMode, all: []string{ColShipMode}},
	{feature: FeatureFilterOrderDate, all: []string{ColOrderDate}},

	{feature: FeatureTotalSales, all: []string{ColSales}},
	{feature: FeatureTotalProfit, all: []string{ColProfit}},
	{feature: FeatureTotalQuantity, all: []string{ColQuantity}},
	{feature: FeatureProfitMargin, all: []string{ColSales, ColProfit}},
	{feature: FeatureTotalOrders, all: []string{ColOrderID}},
	{feature: FeatureAverageDiscount, all: []string{ColDiscount}},

	{feature: FeatureMonthlySales, all: []string{ColOrderDate, ColSales}},
	{feature: FeatureTopProducts, all: []string{ColSales}, anyOf: []string{ColProductName, ColSubCategory}},
	{feature: FeatureCategoryShare, all: []string{ColCategory, ColSales}},
	{feature: FeatureRegionSales, all: []string{ColRegion, ColSales}},
	{feature: FeatureShipModeSales, all: []string{ColShipMode, ColSales}},
	{feature: FeatureSubCategoryProfit, all: []string{ColSubCategory, ColProfit}},
	{feature: FeatureSalesProfit, all: []string{ColSales, ColProfit}},
}

// Capabilities 功能 -> 是否可用
type Capabilities map[Feature]bool

// Has 功能是否可用
func (c Capabilities) Has(f Feature) bool { return c[f] }

// DetectCapabilities 根据列名判定功能能力表
func DetectCapabilities(columns []string) Capabilities {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	caps := make(Capabilities, len(requirements))
	for _, req := range requirements {
		ok := true
		for _, c := range req.all {
			if !present[c] {
				ok = false
				break
			}
		}
		if ok && len(req.anyOf) > 0 {
			ok = false
			for _, c := range req.anyOf {
				if present[c] {
					ok = true
					break
				}
			}
		}
		caps[req.feature] = ok
	}
	return caps
}
