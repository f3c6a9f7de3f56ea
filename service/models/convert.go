package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/filter"
)

// ErrInvalidRequest 请求参数不合法
var ErrInvalidRequest = errors.New("请求参数不合法")

// ToCriteria 转换为过滤条件；日期格式错误或起止颠倒时返回ErrInvalidRequest
func (f FilterRequest) ToCriteria() (filter.Criteria, error) {
	start, err := parseDay("start_date", f.StartDate)
	if err != nil {
		return filter.Criteria{}, err
	}
	end, err := parseDay("end_date", f.EndDate)
	if err != nil {
		return filter.Criteria{}, err
	}
	if start != nil && end != nil && start.After(*end) {
		return filter.Criteria{}, fmt.Errorf("%w: start_date晚于end_date", ErrInvalidRequest)
	}

	c := filter.NewCriteria(
		filter.In(dataset.ColRegion, f.Regions...),
		filter.In(dataset.ColCategory, f.Categories...),
		filter.In(dataset.ColSegment, f.Segments...),
		filter.In(dataset.ColShipMode, f.ShipModes...),
		filter.Between(dataset.ColOrderDate, start, end),
	)

	// 按列名排序，保证条件顺序稳定
	names := make([]string, 0, len(f.Columns))
	for name := range f.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c = c.And(filter.In(name, f.Columns[name]...))
	}
	return c, nil
}

func parseDay(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dataset.DateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s应为YYYY-MM-DD格式: %q", ErrInvalidRequest, field, s)
	}
	return &t, nil
}

// ToSortSpec 转换排序键，忽略空列名
func ToSortSpec(keys []SortRequest) filter.SortSpec {
	var spec filter.SortSpec
	for _, k := range keys {
		if k.Column == "" {
			continue
		}
		spec = append(spec, filter.SortKey{Column: k.Column, Descending: k.Descending})
	}
	return spec
}

// NewDatasetInfo 生成数据集摘要
func NewDatasetInfo(ds *dataset.Dataset, origin string) *DatasetInfo {
	info := &DatasetInfo{
		ID:           ds.ID,
		Source:       ds.Source,
		Format:       ds.Format,
		Origin:       origin,
		LoadedAt:     ds.LoadedAt,
		Rows:         ds.Len(),
		Columns:      make([]ColumnInfo, 0, len(ds.Columns())),
		Capabilities: []dataset.Feature{},
		ParseErrors:  ds.ParseErrors(),
		Warnings:     []Warning{},
	}
	if info.ParseErrors == nil {
		info.ParseErrors = []dataset.ParseError{}
	}
	for _, c := range ds.Columns() {
		info.Columns = append(info.Columns, ColumnInfo{Name: c, Kind: ds.ColumnKind(c)})
	}
	for f, ok := range ds.Capabilities() {
		if ok {
			info.Capabilities = append(info.Capabilities, f)
		}
	}
	sort.Slice(info.Capabilities, func(i, j int) bool { return info.Capabilities[i] < info.Capabilities[j] })
	return info
}

// NewFilterOptions 收集筛选控件的可选值，按首次出现顺序去重
func NewFilterOptions(ds *dataset.Dataset) *FilterOptions {
	v := ds.All()
	opts := &FilterOptions{
		Regions:    distinct(v, dataset.ColRegion),
		Categories: distinct(v, dataset.ColCategory),
		Segments:   distinct(v, dataset.ColSegment),
		ShipModes:  distinct(v, dataset.ColShipMode),
	}

	if !ds.HasColumn(dataset.ColOrderDate) {
		return opts
	}
	var lo, hi time.Time
	for i := 0; i < v.Len(); i++ {
		t, ok := v.Value(i, dataset.ColOrderDate).Time()
		if !ok {
			continue
		}
		if lo.IsZero() || t.Before(lo) {
			lo = t
		}
		if hi.IsZero() || t.After(hi) {
			hi = t
		}
	}
	if !lo.IsZero() {
		opts.DateRange = &DateRange{Min: lo.Format(dataset.DateLayout), Max: hi.Format(dataset.DateLayout)}
	}
	return opts
}

func distinct(v dataset.View, column string) []string {
	out := []string{}
	if !v.HasColumn(column) {
		return out
	}
	seen := make(map[string]struct{})
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, column)
		if val.IsMissing() {
			continue
		}
		s := val.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
