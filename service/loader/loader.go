/*
 * @module service/loader/loader
 * @description 数据集加载器，从默认资源或上传文件读取表格数据，规范化列名并解析日期列
 * @architecture 适配器模式 - 分隔文本与电子表格两种读取器
 * @stateFlow 识别格式 -> 读取原始单元格 -> 规范化列名 -> 类型推断/日期解析 -> Dataset
 * @rules 单元格解析失败置为缺失值且不中断加载；格式不支持、内容损坏、默认资源缺失返回LoadError
 * @dependencies github.com/spf13/cast, github.com/xuri/excelize/v2, golang.org/x/text
 * @refs service/dataset
 */

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sales-dashboard-service/service/dataset"
)

// Source 外部提供的数据流
type Source struct {
	Name    string         // 文件名，用于推断格式
	Format  dataset.Format // 声明的格式，为空时按扩展名推断
	Charset string         // 分隔文本的字符集，默认utf-8
	Reader  io.Reader
}

// Options 加载选项
type Options struct {
	DefaultPath string
	DateColumns []string
}

// Loader 数据集加载器
type Loader struct {
	defaultPath string
	dateColumns map[string]bool
}

// NewLoader 创建加载器
func NewLoader(opts Options) *Loader {
	// Order Date总是按日期解析，配置的列作为补充
	dateColumns := map[string]bool{dataset.ColOrderDate: true}
	for _, c := range opts.DateColumns {
		if c = strings.TrimSpace(c); c != "" {
			dateColumns[c] = true
		}
	}
	return &Loader{
		defaultPath: opts.DefaultPath,
		dateColumns: dateColumns,
	}
}

// DefaultPath 默认资源路径
func (l *Loader) DefaultPath() string { return l.defaultPath }

// DetectFormat 按扩展名识别格式
func DetectFormat(name string) (dataset.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return dataset.FormatCSV, nil
	case ".tsv":
		return dataset.FormatTSV, nil
	case ".xlsx", ".xlsm":
		return dataset.FormatXLSX, nil
	default:
		return "", fmt.Errorf("不支持的文件类型: %q", filepath.Ext(name))
	}
}

// LoadDefault 读取默认资源
func (l *Loader) LoadDefault(ctx context.Context) (*dataset.Dataset, error) {
	if l.defaultPath == "" {
		return nil, dataset.NewLoadError(dataset.LoadMissingResource, "", errors.New("未配置默认数据集"))
	}

	f, err := os.Open(l.defaultPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dataset.NewLoadError(dataset.LoadMissingResource, l.defaultPath, err)
		}
		return nil, dataset.NewLoadError(dataset.LoadMalformedContent, l.defaultPath, err)
	}
	defer f.Close()

	return l.Load(ctx, Source{Name: l.defaultPath, Reader: f})
}

// Load 读取外部数据流
func (l *Loader) Load(ctx context.Context, src Source) (*dataset.Dataset, error) {
	format := src.Format
	if format == "" {
		detected, err := DetectFormat(src.Name)
		if err != nil {
			return nil, dataset.NewLoadError(dataset.LoadUnsupportedFormat, src.Name, err)
		}
		format = detected
	}
	if src.Reader == nil {
		return nil, dataset.NewLoadError(dataset.LoadMissingResource, src.Name, errors.New("数据流为空"))
	}

	var (
		tbl *rawTable
		err error
	)
	switch format {
	case dataset.FormatCSV:
		tbl, err = readDelimited(ctx, src.Reader, ',', src.Charset)
	case dataset.FormatTSV:
		tbl, err = readDelimited(ctx, src.Reader, '\t', src.Charset)
	case dataset.FormatXLSX:
		tbl, err = readSpreadsheet(ctx, src.Reader)
	default:
		return nil, dataset.NewLoadError(dataset.LoadUnsupportedFormat, src.Name, fmt.Errorf("未知格式: %s", format))
	}
	if err != nil {
		if le, ok := dataset.IsLoadError(err); ok {
			if le.Source == "" {
				le.Source = src.Name
			}
			return nil, le
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, dataset.NewLoadError(dataset.LoadMalformedContent, src.Name, err)
	}

	columns := normalizeHeaders(tbl.header)
	rows, parseErrors := l.convert(columns, tbl)

	ds := dataset.New(src.Name, format, columns, rows).WithParseErrors(parseErrors)

	slog.Info("数据集加载完成",
		"source", src.Name,
		"format", format,
		"rows", ds.Len(),
		"columns", len(columns),
		"dataset_id", ds.ID)
	if len(parseErrors) > 0 {
		slog.Warn("部分单元格无法解析，已置为缺失值",
			"source", src.Name,
			"count", len(parseErrors),
			"first", parseErrors[0].Error())
	}

	return ds, nil
}

// normalizeHeaders 去除列名首尾空白，空列名与重复列名按序编号
func normalizeHeaders(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		}
		seen[name] = 0
		columns[i] = name
	}
	return columns
}
