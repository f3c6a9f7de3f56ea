package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/export"
	"sales-dashboard-service/service/filter"
	"sales-dashboard-service/service/presenter"
	"sales-dashboard-service/testutil"
)

func newPipeline() *Pipeline {
	return New(presenter.NewFormatter(""), export.NewExporter(export.NewMemoryCache(time.Minute, 4, nil)), 10)
}

func warningCodes(ws []Warning) []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}

func TestRun(t *testing.T) {
	ds := testutil.SampleDataset(t)
	res, err := newPipeline().Run(context.Background(), ds, Request{
		Criteria:      filter.NewCriteria(filter.In(dataset.ColCategory, "Technology")),
		Sort:          filter.SortSpec{{Column: dataset.ColSales, Descending: true}},
		Page:          1,
		PageSize:      2,
		IncludeExport: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.View.Len())
	assert.Equal(t, 230.0, res.Summary.Metrics[dataset.FeatureTotalSales])
	require.NotEmpty(t, res.Cards)
	assert.Equal(t, "₹230.00", res.Cards[0].Value)
	assert.Len(t, res.Charts, 7)

	assert.Equal(t, 3, res.Table.Total)
	require.Len(t, res.Table.Rows, 2)
	assert.Equal(t, dataset.Text("CA-1"), res.Table.Rows[0][0], "按销售额降序")

	require.NotNil(t, res.Export)
	assert.Equal(t, 3, res.Export.Rows)
	assert.NotEmpty(t, res.Export.Data)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 7, ds.Len(), "输入数据集不变")
}

func TestRunScenario(t *testing.T) {
	ds := dataset.New("mem", dataset.FormatCSV, []string{"Region", "Category", "Sales", "Order Date"}, [][]dataset.Value{
		{dataset.Text("East"), dataset.Text("Tech"), dataset.Number(100), dataset.Date(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))},
		{dataset.Text("West"), dataset.Text("Tech"), dataset.Number(50), dataset.Date(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC))},
	})

	res, err := newPipeline().Run(context.Background(), ds, Request{
		Criteria: filter.NewCriteria(filter.In(dataset.ColRegion, "East")),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.View.Len())
	assert.Equal(t, 100.0, res.Summary.Metrics[dataset.FeatureTotalSales])
	assert.Equal(t, "Tech", res.Summary.Groups[dataset.FeatureCategoryShare].Groups[0].Key)
	assert.Equal(t, 100.0, res.Summary.Groups[dataset.FeatureCategoryShare].Groups[0].Value)
}

func TestRunWarnings(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	t.Run("空数据集", func(t *testing.T) {
		res, err := p.Run(ctx, nil, Request{IncludeExport: true})
		require.NoError(t, err)
		assert.Equal(t, []string{WarnEmptyDataset}, warningCodes(res.Warnings))

		var empty *dataset.EmptyDatasetError
		require.True(t, errors.As(res.Warnings[0].Err, &empty))
		assert.Equal(t, "load", empty.Stage)
		assert.Empty(t, res.Charts)
		assert.NotNil(t, res.Export)
	})

	t.Run("过滤结果为空", func(t *testing.T) {
		res, err := p.Run(ctx, testutil.SampleDataset(t), Request{
			Criteria: filter.NewCriteria(filter.In(dataset.ColRegion, "North")),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{WarnEmptyResult}, warningCodes(res.Warnings))
		assert.Equal(t, "₹0.00", res.Cards[0].Value)
		assert.Len(t, res.Charts, 7)
	})

	t.Run("单元格解析失败", func(t *testing.T) {
		ds := testutil.LoadCSV(t, "bad.csv", "Order Date,Sales\nyesterday,1\n2023-01-01,2\n")
		res, err := p.Run(ctx, ds, Request{})
		require.NoError(t, err)
		assert.Equal(t, []string{WarnParseErrors}, warningCodes(res.Warnings))
		assert.Equal(t, 3.0, res.Summary.Metrics[dataset.FeatureTotalSales])
	})
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline().Run(ctx, testutil.SampleDataset(t), Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportMatchesRun(t *testing.T) {
	ds := testutil.SampleDataset(t)
	p := newPipeline()
	criteria := filter.NewCriteria(filter.In(dataset.ColRegion, "West"))

	res, err := p.Run(context.Background(), ds, Request{Criteria: criteria, IncludeExport: true})
	require.NoError(t, err)

	art, err := p.Export(context.Background(), ds, criteria, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Export.Key, art.Key)
	assert.True(t, art.Cached)
}
