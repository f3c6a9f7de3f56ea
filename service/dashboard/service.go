/*
 * @module service/dashboard/service
 * @description 仪表盘服务，负责数据集的加载与替换、筛选项查询、仪表盘查询与导出
 * @architecture 分层架构 - 业务逻辑层，控制器只做参数绑定与响应渲染
 * @stateFlow 加载/上传 -> 会话存储替换 -> 发布dataset.loaded；查询 -> 流水线 -> 响应模型
 * @rules 加载失败保留上一个数据集并发布dataset.load_failed；上传超过大小限制视为内容错误；定时刷新不覆盖用户上传的数据集
 * @dependencies service/loader, service/session, service/pipeline, service/event, service/monitoring
 * @refs api/controllers, service/init.go
 */

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/event"
	"sales-dashboard-service/service/export"
	"sales-dashboard-service/service/loader"
	"sales-dashboard-service/service/models"
	"sales-dashboard-service/service/monitoring"
	"sales-dashboard-service/service/pipeline"
	"sales-dashboard-service/service/session"
)

// ErrUploadTooLarge 上传文件超过大小限制
var ErrUploadTooLarge = errors.New("上传文件超过大小限制")

// Options 服务依赖
type Options struct {
	Loader         *loader.Loader
	Store          *session.Store
	Pipeline       *pipeline.Pipeline
	Publisher      event.Publisher
	Metrics        *monitoring.Metrics
	PageSize       int
	MaxUploadBytes int64
}

// Service 仪表盘服务
type Service struct {
	loader         *loader.Loader
	store          *session.Store
	pipeline       *pipeline.Pipeline
	publisher      event.Publisher
	metrics        *monitoring.Metrics
	pageSize       int
	maxUploadBytes int64
}

// NewService 创建仪表盘服务
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = session.NewStore()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = pipeline.New(nil, nil, 0)
	}
	if opts.Loader == nil {
		opts.Loader = loader.NewLoader(loader.Options{})
	}
	return &Service{
		loader:         opts.Loader,
		store:          opts.Store,
		pipeline:       opts.Pipeline,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		pageSize:       opts.PageSize,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// Store 会话存储
func (s *Service) Store() *session.Store { return s.store }

// LoadDefault 读取默认资源并替换当前数据集
func (s *Service) LoadDefault(ctx context.Context) (*models.DatasetInfo, error) {
	ds, err := s.loader.LoadDefault(ctx)
	if err != nil {
		s.loadFailed(ctx, session.OriginDefault, s.loader.DefaultPath(), err)
		return nil, err
	}
	s.store.Replace(ds, session.OriginDefault)
	s.loaded(ctx, ds, session.OriginDefault)
	return models.NewDatasetInfo(ds, string(session.OriginDefault)), nil
}

// Reload 重新读取默认资源，覆盖上传的数据集
func (s *Service) Reload(ctx context.Context) (*models.DatasetInfo, error) {
	return s.LoadDefault(ctx)
}

// RefreshDefault 定时刷新默认资源；当前数据集来自上传时不替换
func (s *Service) RefreshDefault(ctx context.Context) error {
	if s.store.Current().Origin == session.OriginUpload {
		slog.Debug("当前数据集来自上传，跳过定时刷新")
		return nil
	}

	ds, err := s.loader.LoadDefault(ctx)
	if err != nil {
		s.loadFailed(ctx, session.OriginDefault, s.loader.DefaultPath(), err)
		return err
	}
	replaced := s.store.ReplaceIf(ds, session.OriginDefault, func(current session.Origin) bool {
		return current != session.OriginUpload
	})
	if !replaced {
		slog.Info("刷新期间有新的上传，丢弃刷新结果", "dataset_id", ds.ID)
		return nil
	}
	s.loaded(ctx, ds, session.OriginDefault)
	return nil
}

// Upload 读取上传文件并替换当前数据集
func (s *Service) Upload(ctx context.Context, name, charset string, r io.Reader) (*models.DatasetInfo, error) {
	if r != nil && s.maxUploadBytes > 0 {
		r = &limitedReader{r: r, remaining: s.maxUploadBytes}
	}

	ds, err := s.loader.Load(ctx, loader.Source{Name: name, Charset: charset, Reader: r})
	if err != nil {
		s.loadFailed(ctx, session.OriginUpload, name, err)
		return nil, err
	}
	s.store.Replace(ds, session.OriginUpload)
	s.loaded(ctx, ds, session.OriginUpload)
	return models.NewDatasetInfo(ds, string(session.OriginUpload)), nil
}

// RejectOversizedUpload 记录在读取文件前就因超过大小限制被拒绝的上传，返回对应的LoadError
func (s *Service) RejectOversizedUpload(ctx context.Context, name string, limit int64) error {
	if name == "" {
		name = "upload"
	}
	err := dataset.NewLoadError(dataset.LoadMalformedContent, name, fmt.Errorf("%w: 上限%d字节", ErrUploadTooLarge, limit))
	s.loadFailed(ctx, session.OriginUpload, name, err)
	return err
}

// Current 当前数据集摘要，尚未加载时返回nil
func (s *Service) Current() *models.DatasetInfo {
	snap := s.store.Current()
	if snap.Dataset == nil {
		return nil
	}
	info := models.NewDatasetInfo(snap.Dataset, string(snap.Origin))
	if snap.Dataset.Len() == 0 {
		info.Warnings = append(info.Warnings, models.Warning{Code: pipeline.WarnEmptyDataset, Message: "数据集中没有数据行"})
	}
	return info
}

// Options 当前数据集的筛选可选值
func (s *Service) Options() *models.FilterOptions {
	return models.NewFilterOptions(s.store.Dataset())
}

// Query 按筛选条件计算仪表盘
func (s *Service) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	criteria, err := req.Filters.ToCriteria()
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	ds := s.store.Dataset()
	start := time.Now()
	res, err := s.pipeline.Run(ctx, ds, pipeline.Request{
		Criteria: criteria,
		Sort:     models.ToSortSpec(req.Sort),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.metrics.ObservePipeline("error", time.Since(start))
		return nil, err
	}
	outcome := "ok"
	if res.View.Len() == 0 {
		outcome = "empty"
	}
	s.metrics.ObservePipeline(outcome, time.Since(start))

	resp := &models.QueryResponse{
		DatasetID: ds.ID,
		Rows:      res.View.Len(),
		Summary:   res.Summary,
		Cards:     res.Cards,
		Charts:    res.Charts,
		Table:     res.Table,
		Warnings:  make([]models.Warning, 0, len(res.Warnings)),
	}
	for _, w := range res.Warnings {
		resp.Warnings = append(resp.Warnings, models.Warning{Code: w.Code, Message: w.Message})
	}
	return resp, nil
}

// Export 导出过滤后的数据为xlsx
func (s *Service) Export(ctx context.Context, req models.ExportRequest) (*export.Artifact, error) {
	criteria, err := req.Filters.ToCriteria()
	if err != nil {
		return nil, err
	}

	ds := s.store.Dataset()
	art, err := s.pipeline.Export(ctx, ds, criteria, models.ToSortSpec(req.Sort))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExport(len(art.Data), art.Cached)
	event.Emit(ctx, s.publisher, event.New(event.TypeExportGenerated, map[string]interface{}{
		"dataset_id": ds.ID,
		"rows":       art.Rows,
		"bytes":      len(art.Data),
		"cached":     art.Cached,
		"key":        art.Key,
	}))
	return art, nil
}

func (s *Service) loaded(ctx context.Context, ds *dataset.Dataset, origin session.Origin) {
	s.metrics.ObserveLoad(string(origin), ds.Len(), len(ds.ParseErrors()), nil)
	slog.Info("当前数据集已替换", "dataset_id", ds.ID, "source", ds.Source, "origin", origin, "rows", ds.Len())
	event.Emit(ctx, s.publisher, event.New(event.TypeDatasetLoaded, map[string]interface{}{
		"dataset_id":   ds.ID,
		"source":       ds.Source,
		"origin":       string(origin),
		"rows":         ds.Len(),
		"parse_errors": len(ds.ParseErrors()),
	}))
}

func (s *Service) loadFailed(ctx context.Context, origin session.Origin, source string, err error) {
	s.metrics.ObserveLoad(string(origin), 0, 0, err)
	slog.Error("数据集加载失败，保留当前数据集", "source", source, "origin", origin, "error", err)

	data := map[string]interface{}{
		"source": source,
		"origin": string(origin),
		"error":  err.Error(),
	}
	if le, ok := dataset.IsLoadError(err); ok {
		data["kind"] = string(le.Kind)
	}
	event.Emit(ctx, s.publisher, event.New(event.TypeDatasetLoadFailed, data))
}

// limitedReader 超过限制时返回ErrUploadTooLarge，而不是静默截断
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrUploadTooLarge
	}
	// 多读一个字节以判断是否超限
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrUploadTooLarge
	}
	return n, err
}
