package aggregate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/testutil"
)

func emptyView(ds *dataset.Dataset) dataset.View {
	return dataset.NewView(ds, []int{})
}

func TestTotals(t *testing.T) {
	ds := testutil.SampleDataset(t)
	all := ds.All()

	assert.Equal(t, 1065.5, Total(all, dataset.ColSales))
	assert.Equal(t, -26.5, Total(all, dataset.ColProfit))
	assert.Equal(t, 17.0, Total(all, dataset.ColQuantity))
	assert.Equal(t, 0.0, Total(all, "Unknown"), "列不存在时为0")
	assert.Equal(t, 0.0, Total(emptyView(ds), dataset.ColSales), "空视图合计为0")

	assert.Equal(t, 6, DistinctCount(all, dataset.ColOrderID))
	assert.Equal(t, 4, DistinctCount(all, dataset.ColRegion), "缺失值不计入去重计数")
	assert.InDelta(t, 0.8/7, Mean(all, dataset.ColDiscount), 1e-9)
	assert.Equal(t, 0.0, Mean(emptyView(ds), dataset.ColDiscount))
}

func TestRatio(t *testing.T) {
	ds := testutil.SampleDataset(t)
	assert.Equal(t, -2.49, Ratio(ds.All(), dataset.ColProfit, dataset.ColSales))

	zero := dataset.New("mem", dataset.FormatCSV, []string{"Sales", "Profit"}, [][]dataset.Value{
		{dataset.Number(0), dataset.Number(40)},
		{dataset.Missing(), dataset.Number(2)},
	})
	assert.Equal(t, 0.0, Ratio(zero.All(), "Profit", "Sales"), "分母为0时比率为0")
	assert.Equal(t, 0.0, Ratio(emptyView(ds), dataset.ColProfit, dataset.ColSales))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 10.0, Round2(10))
}

func TestGroupSum(t *testing.T) {
	ds := testutil.SampleDataset(t)

	testCases := []struct {
		name     string
		group    string
		value    string
		expected []Group
	}{
		{
			name:  "按地区合计，缺失地区不成为分组键",
			group: dataset.ColRegion,
			value: dataset.ColSales,
			expected: []Group{
				{Key: "Central", Value: 20, Count: 1},
				{Key: "East", Value: 115.5, Count: 2},
				{Key: "South", Value: 500, Count: 1},
				{Key: "West", Value: 350, Count: 2},
			},
		},
		{
			name:  "日期列按月分桶",
			group: dataset.ColOrderDate,
			value: dataset.ColSales,
			expected: []Group{
				{Key: "2023-01", Value: 100, Count: 1},
				{Key: "2023-02", Value: 370, Count: 3},
				{Key: "2023-03", Value: 580, Count: 2},
			},
		},
		{
			name:     "列不存在时为空",
			group:    "Country",
			value:    dataset.ColSales,
			expected: []Group{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GroupSum(ds.All(), tc.group, tc.value))
		})
	}
}

func TestGroupSumScenario(t *testing.T) {
	ds := dataset.New("mem", dataset.FormatCSV, []string{"Region", "Category", "Sales"}, [][]dataset.Value{
		{dataset.Text("East"), dataset.Text("Tech"), dataset.Number(100)},
	})
	assert.Equal(t, 100.0, Total(ds.All(), "Sales"))
	assert.Equal(t, []Group{{Key: "Tech", Value: 100, Count: 1}}, GroupSum(ds.All(), "Category", "Sales"))
}

func TestGroupSumMissingValues(t *testing.T) {
	ds := dataset.New("mem", dataset.FormatCSV, []string{"Region", "Sales"}, [][]dataset.Value{
		{dataset.Text("East"), dataset.Missing()},
		{dataset.Missing(), dataset.Number(10)},
		{dataset.Text("West"), dataset.Number(5)},
	})

	groups := GroupSum(ds.All(), "Region", "Sales")
	assert.Equal(t, []Group{
		{Key: "East", Value: 0, Count: 1},
		{Key: "West", Value: 5, Count: 1},
	}, groups)
}

func TestTopN(t *testing.T) {
	groups := []Group{
		{Key: "a", Value: 5},
		{Key: "b", Value: 50},
		{Key: "c", Value: 1},
		{Key: "d", Value: 20},
		{Key: "e", Value: 30},
	}

	top := TopN(groups, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"d", "e", "b"}, keys(top), "按合计升序，最大值在最后")

	assert.Len(t, TopN(groups, 10), 5, "不足n个时全部返回")
	assert.Empty(t, TopN(groups, 0))
	assert.Equal(t, "a", groups[0].Key, "不修改输入")

	many := make([]Group, 25)
	for i := range many {
		many[i] = Group{Key: string(rune('A' + i)), Value: float64(i)}
	}
	top10 := TopN(many, 10)
	assert.Len(t, top10, 10)
	assert.Equal(t, 15.0, top10[0].Value)
	assert.Equal(t, 24.0, top10[9].Value)
}

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestSummarize(t *testing.T) {
	ds := testutil.SampleDataset(t)
	s := Summarize(ds.All(), ds.Capabilities(), 3)

	assert.Equal(t, 7, s.Rows)
	assert.Equal(t, map[dataset.Feature]float64{
		dataset.FeatureTotalSales:      1065.5,
		dataset.FeatureTotalProfit:     -26.5,
		dataset.FeatureTotalQuantity:   17,
		dataset.FeatureProfitMargin:    -2.49,
		dataset.FeatureTotalOrders:     6,
		dataset.FeatureAverageDiscount: 11.43,
	}, s.Metrics)

	top := s.Groups[dataset.FeatureTopProducts]
	require.NotNil(t, top)
	assert.Equal(t, dataset.ColProductName, top.GroupColumn)
	assert.Equal(t, []string{"Apple iPhone", "Office Chair", "Dining Table"}, keys(top.Groups))

	profit := s.Groups[dataset.FeatureSubCategoryProfit]
	require.NotNil(t, profit)
	assert.Equal(t, []string{"Accessories", "Paper", "Phones"}, keys(profit.Groups))

	monthly := s.Groups[dataset.FeatureMonthlySales]
	require.NotNil(t, monthly)
	assert.Equal(t, []string{"2023-01", "2023-02", "2023-03"}, keys(monthly.Groups))

	require.Len(t, s.Points, 7)
	assert.Equal(t, Point{Label: "CA-1", X: 100, Y: 20}, s.Points[0])
}

func TestSummarizeRespectsCapabilities(t *testing.T) {
	ds := testutil.LoadCSV(t, "partial.csv", "Sub-Category,Sales\nPhones,10\nChairs,30\n")
	s := Summarize(ds.All(), ds.Capabilities(), 10)

	assert.Equal(t, map[dataset.Feature]float64{dataset.FeatureTotalSales: 40}, s.Metrics)
	require.Contains(t, s.Groups, dataset.FeatureTopProducts)
	assert.Equal(t, dataset.ColSubCategory, s.Groups[dataset.FeatureTopProducts].GroupColumn, "缺少产品名时按子类别统计")
	assert.NotContains(t, s.Groups, dataset.FeatureRegionSales)
	assert.Nil(t, s.Points)
}

func TestSummarizeEmptyView(t *testing.T) {
	ds := testutil.SampleDataset(t)
	s := Summarize(emptyView(ds), ds.Capabilities(), 10)

	assert.Equal(t, 0, s.Rows)
	assert.Equal(t, 0.0, s.Metrics[dataset.FeatureTotalSales])
	assert.Equal(t, 0.0, s.Metrics[dataset.FeatureProfitMargin])
	assert.Empty(t, s.Groups[dataset.FeatureRegionSales].Groups)
	assert.Empty(t, s.Points)
}

func TestSummarizeBeyondFloatRange(t *testing.T) {
	ds := dataset.New("huge", dataset.FormatCSV,
		[]string{dataset.ColOrderID, dataset.ColCategory, dataset.ColSales, dataset.ColProfit, dataset.ColQuantity, dataset.ColDiscount},
		[][]dataset.Value{
			{dataset.Text("CA-1"), dataset.Text("Technology"), dataset.Number(1e308), dataset.Number(1e308), dataset.Number(1e308), dataset.Number(1e308)},
			{dataset.Text("CA-2"), dataset.Text("Technology"), dataset.Number(1e308), dataset.Number(1e308), dataset.Number(1e308), dataset.Number(1e308)},
		})

	var s *Summary
	require.NotPanics(t, func() { s = Summarize(ds.All(), ds.Capabilities(), 10) })

	assert.Equal(t, math.MaxFloat64, s.Metrics[dataset.FeatureTotalSales], "超出范围的合计截断到MaxFloat64")
	assert.Equal(t, 100.0, s.Metrics[dataset.FeatureProfitMargin], "比率按精确合计计算")
	assert.Equal(t, math.MaxFloat64, s.Metrics[dataset.FeatureAverageDiscount])
	require.NotNil(t, s.Groups[dataset.FeatureCategoryShare])
	assert.Equal(t, math.MaxFloat64, s.Groups[dataset.FeatureCategoryShare].Groups[0].Value)

	_, err := json.Marshal(s)
	assert.NoError(t, err, "结果中不含无穷大")
}

func TestRound2NonFinite(t *testing.T) {
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, math.MaxFloat64, Round2(math.Inf(1)))
	assert.Equal(t, -math.MaxFloat64, Round2(math.Inf(-1)))
}
