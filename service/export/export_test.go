package export

import (
	"bytes"
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/filter"
	"sales-dashboard-service/service/loader"
	"sales-dashboard-service/testutil"
)

type countingObserver struct {
	hits, misses atomic.Int32
}

func (o *countingObserver) CacheHit()  { o.hits.Add(1) }
func (o *countingObserver) CacheMiss() { o.misses.Add(1) }

func TestEncodeRoundTrip(t *testing.T) {
	ds := testutil.SampleDataset(t)
	view := filter.Apply(ds.All(), filter.NewCriteria(filter.In(dataset.ColRegion, "East", "West")))

	data, err := Encode(view)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	require.NoError(t, f.Close())

	l := loader.NewLoader(loader.Options{DateColumns: testutil.SampleDateColumns})
	reloaded, err := l.Load(context.Background(), loader.Source{Name: FileName, Reader: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, ds.Columns(), reloaded.Columns(), "列头保持原顺序")
	require.Equal(t, view.Len(), reloaded.Len())
	for i := 0; i < view.Len(); i++ {
		for _, c := range ds.Columns() {
			assert.Equal(t, view.Value(i, c).String(), reloaded.All().Value(i, c).String(), "row %d column %s", i, c)
		}
	}
	assert.True(t, reloaded.All().Value(3, dataset.ColOrderDate).IsMissing(), "缺失值导出为空单元格")
}

func TestEncodeEmptyView(t *testing.T) {
	ds := testutil.SampleDataset(t)
	data, err := Encode(dataset.NewView(ds, []int{}))
	require.NoError(t, err)

	l := loader.NewLoader(loader.Options{})
	reloaded, err := l.Load(context.Background(), loader.Source{Name: FileName, Reader: bytes.NewReader(data)})
	require.NoError(t, err)
	assert.Equal(t, ds.Columns(), reloaded.Columns())
	assert.Equal(t, 0, reloaded.Len())
}

func TestViewKey(t *testing.T) {
	a := testutil.SampleDataset(t)
	b := testutil.SampleDataset(t)
	require.NotEqual(t, a.ID, b.ID)

	assert.Equal(t, ViewKey(a.All()), ViewKey(b.All()), "内容相同键相同")

	east := filter.Apply(a.All(), filter.NewCriteria(filter.In(dataset.ColRegion, "East")))
	west := filter.Apply(a.All(), filter.NewCriteria(filter.In(dataset.ColRegion, "West")))
	assert.NotEqual(t, ViewKey(east), ViewKey(west))
	assert.NotEqual(t, ViewKey(a.All()), ViewKey(east))

	sorted := filter.Sort(a.All(), filter.SortSpec{{Column: dataset.ColSales}})
	assert.NotEqual(t, ViewKey(a.All()), ViewKey(sorted), "行顺序不同键不同")
}

func TestViewKeySubSecondDates(t *testing.T) {
	base := time.Date(2023, 1, 5, 10, 30, 0, 0, time.UTC)
	view := func(d time.Time) dataset.View {
		ds := dataset.New("mem", dataset.FormatCSV, []string{dataset.ColOrderDate}, [][]dataset.Value{{dataset.Date(d)}})
		return ds.All()
	}

	assert.Equal(t, ViewKey(view(base)), ViewKey(view(base)))
	assert.NotEqual(t, ViewKey(view(base)), ViewKey(view(base.Add(time.Millisecond))), "毫秒不同键不同")
}

func TestExporterUsesCache(t *testing.T) {
	ds := testutil.SampleDataset(t)
	obs := &countingObserver{}
	exporter := NewExporter(NewMemoryCache(time.Minute, 8, obs))
	ctx := context.Background()

	first, err := exporter.Export(ctx, ds.All())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, FileName, first.FileName)
	assert.Equal(t, ContentType, first.ContentType)
	assert.Equal(t, 7, first.Rows)

	second, err := exporter.Export(ctx, testutil.SampleDataset(t).All())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)

	assert.Equal(t, int32(1), obs.hits.Load())
	assert.Equal(t, int32(1), obs.misses.Load())
}

func TestExporterWithoutCache(t *testing.T) {
	ds := testutil.SampleDataset(t)
	exporter := NewExporter(nil)

	art, err := exporter.Export(context.Background(), ds.All())
	require.NoError(t, err)
	assert.False(t, art.Cached)
	assert.NotEmpty(t, art.Data)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exporter.Export(ctx, ds.All())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCacheExpiryAndEviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute, 2, nil)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	now = now.Add(10 * time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "最早过期的条目被淘汰")

	data, ok, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), data)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "c")
	assert.False(t, ok, "过期条目不可读")
}

func TestRedisCache(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("未设置REDIS_HOST，跳过Redis缓存测试")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	obs := &countingObserver{}
	c, err := NewRedisCache(RedisOptions{Host: host, Port: port, Password: os.Getenv("REDIS_PASSWORD")}, time.Minute, obs)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	key := "test-" + time.Now().Format("150405.000000")

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte("xlsx")))
	data, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, int32(1), obs.hits.Load())
	assert.Equal(t, int32(1), obs.misses.Load())
}
