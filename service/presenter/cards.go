/*
 * @module service/presenter/cards
 * @description 将聚合指标映射为带标题与格式化文本的指标卡片
 * @architecture 纯映射 - 不做格式化以外的计算
 * @rules 只输出数据集具备的指标，顺序固定
 * @dependencies service/aggregate, service/dataset
 * @refs api/controllers/dashboard_controller
 */

package presenter

import (
	"sales-dashboard-service/service/aggregate"
	"sales-dashboard-service/service/dataset"
)

// Card 指标卡片
type Card struct {
	Key   dataset.Feature `json:"key"`
	Title string          `json:"title"`
	Value string          `json:"value"`
	Raw   float64         `json:"raw"`
}

type valueStyle int

const (
	styleMoney valueStyle = iota
	styleCount
	stylePercent
)

var cardOrder = []struct {
	feature dataset.Feature
	title   string
	style   valueStyle
}{
	{dataset.FeatureTotalSales, "Total Sales", styleMoney},
	{dataset.FeatureTotalProfit, "Total Profit", styleMoney},
	{dataset.FeatureTotalQuantity, "Total Quantity", styleCount},
	{dataset.FeatureProfitMargin, "Profit Margin", stylePercent},
	{dataset.FeatureTotalOrders, "Total Orders", styleCount},
	{dataset.FeatureAverageDiscount, "Average Discount", stylePercent},
}

// Cards 生成指标卡片
func (f *Formatter) Cards(s *aggregate.Summary) []Card {
	cards := make([]Card, 0, len(cardOrder))
	for _, c := range cardOrder {
		v, ok := s.Metric(c.feature)
		if !ok {
			continue
		}
		card := Card{Key: c.feature, Title: c.title, Raw: v}
		switch c.style {
		case styleMoney:
			card.Value = f.Money(v)
		case styleCount:
			card.Value = f.Count(v)
		case stylePercent:
			card.Value = f.Percent(v)
		}
		cards = append(cards, card)
	}
	return cards
}
