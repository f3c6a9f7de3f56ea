package dashboard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/event"
	"sales-dashboard-service/service/loader"
	"sales-dashboard-service/service/models"
	"sales-dashboard-service/service/monitoring"
	"sales-dashboard-service/service/pipeline"
	"sales-dashboard-service/service/session"
	helper "sales-dashboard-service/testutil"
)

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(evt event.Event) bool { return evt.Type == eventType })
}

func newTestService(t *testing.T, defaultPath string) (*Service, *helper.MockPublisher, *monitoring.Metrics) {
	t.Helper()
	pub := &helper.MockPublisher{}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	svc := NewService(Options{
		Loader:         loader.NewLoader(loader.Options{DefaultPath: defaultPath, DateColumns: helper.SampleDateColumns}),
		Store:          session.NewStore(),
		Pipeline:       pipeline.New(nil, nil, 3),
		Publisher:      pub,
		Metrics:        metrics,
		PageSize:       2,
		MaxUploadBytes: 1 << 20,
	})
	return svc, pub, metrics
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(helper.SampleCSV), 0o644))
	return path
}

func TestLoadDefault(t *testing.T) {
	svc, pub, metrics := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoaded)).Return(nil).Once()

	info, err := svc.LoadDefault(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, info.Rows)
	assert.Equal(t, "default", info.Origin)
	assert.Equal(t, info.ID, svc.Current().ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("default", "ok")))
	pub.AssertExpectations(t)
}

func TestUploadFailureKeepsCurrentDataset(t *testing.T) {
	svc, pub, metrics := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoaded)).Return(nil)
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoadFailed)).Return(errors.New("broker down"))

	before, err := svc.LoadDefault(context.Background())
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "report.pdf", "", strings.NewReader("x"))
	le, ok := dataset.IsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, dataset.LoadUnsupportedFormat, le.Kind)

	assert.Equal(t, before.ID, svc.Current().ID, "加载失败不替换当前数据集")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("upload", "error")))
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestUploadReplacesDataset(t *testing.T) {
	svc, pub, _ := newTestService(t, "")
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	info, err := svc.Upload(context.Background(), "thin.csv", "", strings.NewReader("Region,Sales\nEast,10\nWest,5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, "upload", svc.Current().Origin)
	assert.Equal(t, []string{"East", "West"}, svc.Options().Regions)
}

func TestUploadTooLarge(t *testing.T) {
	svc, pub, _ := newTestService(t, "")
	svc.maxUploadBytes = 16
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoadFailed)).Return(nil).Once()

	_, err := svc.Upload(context.Background(), "big.csv", "", strings.NewReader(helper.SampleCSV))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUploadTooLarge))
	assert.Nil(t, svc.Current())
	pub.AssertExpectations(t)
}

func TestRejectOversizedUpload(t *testing.T) {
	svc, pub, metrics := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoaded)).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(evt event.Event) bool {
		return evt.Type == event.TypeDatasetLoadFailed && evt.Data["origin"] == "upload"
	})).Return(nil).Once()

	before, err := svc.LoadDefault(context.Background())
	require.NoError(t, err)

	err = svc.RejectOversizedUpload(context.Background(), "", 1<<20)
	assert.True(t, errors.Is(err, ErrUploadTooLarge))
	le, ok := dataset.IsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, "upload", le.Source)

	assert.Equal(t, before.ID, svc.Current().ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("upload", "error")))
	pub.AssertExpectations(t)
}

func TestRefreshDefaultSkipsUpload(t *testing.T) {
	svc, pub, _ := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uploaded, err := svc.Upload(context.Background(), "thin.csv", "", strings.NewReader("Region\nEast\n"))
	require.NoError(t, err)

	require.NoError(t, svc.RefreshDefault(context.Background()))
	assert.Equal(t, uploaded.ID, svc.Current().ID)

	reloaded, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reloaded.ID, svc.Current().ID, "手动重新加载覆盖上传")

	require.NoError(t, svc.RefreshDefault(context.Background()))
	assert.NotEqual(t, reloaded.ID, svc.Current().ID, "默认资源来源时定时刷新替换")
}

func TestQuery(t *testing.T) {
	svc, pub, metrics := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	_, err := svc.LoadDefault(context.Background())
	require.NoError(t, err)

	resp, err := svc.Query(context.Background(), models.QueryRequest{
		Filters: models.FilterRequest{Regions: []string{"West"}},
		Sort:    []models.SortRequest{{Column: "Sales", Descending: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, 350.0, resp.Summary.Metrics[dataset.FeatureTotalSales])
	assert.Equal(t, 2, resp.Table.PageSize, "使用默认分页大小")
	require.Len(t, resp.Table.Rows, 2)
	assert.Equal(t, dataset.Number(300), resp.Table.Rows[0][9])
	assert.Empty(t, resp.Warnings)
	assert.Len(t, resp.Cards, 6)
	assert.Len(t, resp.Charts, 7)

	resp, err = svc.Query(context.Background(), models.QueryRequest{
		Filters: models.FilterRequest{Regions: []string{"North"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Rows)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, pipeline.WarnEmptyResult, resp.Warnings[0].Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("empty")))
}

func TestQueryWithoutDataset(t *testing.T) {
	svc, _, _ := newTestService(t, "")

	resp, err := svc.Query(context.Background(), models.QueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Rows)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, pipeline.WarnEmptyDataset, resp.Warnings[0].Code)
}

func TestQueryInvalidFilter(t *testing.T) {
	svc, _, _ := newTestService(t, "")

	_, err := svc.Query(context.Background(), models.QueryRequest{Filters: models.FilterRequest{StartDate: "yesterday"}})
	assert.True(t, errors.Is(err, models.ErrInvalidRequest))

	_, err = svc.Export(context.Background(), models.ExportRequest{Filters: models.FilterRequest{EndDate: "2023/01/01"}})
	assert.True(t, errors.Is(err, models.ErrInvalidRequest))
}

func TestExport(t *testing.T) {
	svc, pub, metrics := newTestService(t, writeSample(t))
	pub.On("Publish", mock.Anything, eventOfType(event.TypeDatasetLoaded)).Return(nil)
	pub.On("Publish", mock.Anything, eventOfType(event.TypeExportGenerated)).Return(nil).Once()
	_, err := svc.LoadDefault(context.Background())
	require.NoError(t, err)

	art, err := svc.Export(context.Background(), models.ExportRequest{
		Filters: models.FilterRequest{Categories: []string{"Furniture"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, art.Rows)
	assert.NotEmpty(t, art.Data)

	ds, err := loader.NewLoader(loader.Options{}).Load(context.Background(), loader.Source{Name: art.FileName, Reader: strings.NewReader(string(art.Data))})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Exports.WithLabelValues("false")))
	pub.AssertExpectations(t)
}

func TestLimitedReader(t *testing.T) {
	r := &limitedReader{r: strings.NewReader("abcd"), remaining: 4}
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	assert.Equal(t, 4, n)
	assert.NoError(t, err)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}
