package dataset

import (
	"errors"
	"fmt"
)

// LoadErrorKind 加载失败原因
type LoadErrorKind string

const (
	LoadUnsupportedFormat LoadErrorKind = "unsupported_format"
	LoadMalformedContent  LoadErrorKind = "malformed_content"
	LoadMissingResource   LoadErrorKind = "missing_resource"
)

// LoadError 数据集无法读取或格式不受支持，本次交互的流水线终止
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("加载数据集失败 [%s] %s: %v", e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("加载数据集失败 [%s] %s", e.Kind, e.Source)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError 创建加载错误
func NewLoadError(kind LoadErrorKind, source string, err error) *LoadError {
	return &LoadError{Kind: kind, Source: source, Err: err}
}

// IsLoadError 判断错误链中是否包含LoadError
func IsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// ParseError 单个单元格解析失败，已就地置为缺失值
type ParseError struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Raw    string `json:"raw"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("第%d行列[%s]无法解析: %q", e.Row, e.Column, e.Raw)
}

// EmptyDatasetError 加载后或过滤后没有数据行，非致命
type EmptyDatasetError struct {
	Stage string // load, filter
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("数据为空(%s)", e.Stage)
}
