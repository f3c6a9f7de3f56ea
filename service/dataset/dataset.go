/*
 * @module service/dataset/dataset
 * @description 数据集模型，保存列名、按行存储的单元格值以及加载后计算的功能能力表
 * @architecture 领域模型层
 * @stateFlow 加载 -> 创建Dataset(只读) -> 过滤生成View
 * @rules 列集合在所有行之间固定；过滤不修改数据集，只生成新的视图
 * @dependencies github.com/google/uuid
 * @refs service/loader, service/filter
 */

package dataset

import (
	"time"

	"github.com/google/uuid"
)

// 仪表盘识别的列名
const (
	ColRegion      = "Region"
	ColCategory    = "Category"
	ColSegment     = "Segment"
	ColSubCategory = "Sub-Category"
	ColShipMode    = "Ship Mode"
	ColOrderDate   = "Order Date"
	ColShipDate    = "Ship Date"
	ColOrderID     = "Order ID"
	ColProductName = "Product Name"
	ColSales       = "Sales"
	ColProfit      = "Profit"
	ColQuantity    = "Quantity"
	ColDiscount    = "Discount"
)

// Format 数据源格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Dataset 已加载的表格数据集
type Dataset struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Format   Format    `json:"format"`
	LoadedAt time.Time `json:"loaded_at"`

	columns      []string
	index        map[string]int
	kinds        []Kind
	rows         [][]Value
	capabilities Capabilities
	parseErrors  []ParseError
}

// New 创建数据集，rows中每一行的长度必须与columns一致
func New(source string, format Format, columns []string, rows [][]Value) *Dataset {
	ds := &Dataset{
		ID:       uuid.New().String(),
		Source:   source,
		Format:   format,
		LoadedAt: time.Now(),
		columns:  append([]string(nil), columns...),
		index:    make(map[string]int, len(columns)),
		rows:     rows,
	}
	for i, c := range ds.columns {
		ds.index[c] = i
	}
	ds.kinds = make([]Kind, len(ds.columns))
	for i := range ds.columns {
		ds.kinds[i] = dominantKind(rows, i)
	}
	ds.capabilities = DetectCapabilities(ds.columns)
	return ds
}

// Empty 空数据集，用于尚未加载任何数据时
func Empty() *Dataset {
	return New("", "", nil, nil)
}

// WithParseErrors 记录加载时被置为缺失的单元格
func (d *Dataset) WithParseErrors(errs []ParseError) *Dataset {
	d.parseErrors = append([]ParseError(nil), errs...)
	return d
}

// ParseErrors 加载时的单元格解析错误
func (d *Dataset) ParseErrors() []ParseError {
	return d.parseErrors
}

// Columns 列名（原始顺序）
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn 是否存在指定列
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex 列序号，不存在时返回-1
func (d *Dataset) ColumnIndex(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// ColumnKind 列的主要取值类型
func (d *Dataset) ColumnKind(name string) Kind {
	if i, ok := d.index[name]; ok {
		return d.kinds[i]
	}
	return KindMissing
}

// Len 行数
func (d *Dataset) Len() int { return len(d.rows) }

// Capabilities 加载后确定的功能能力表
func (d *Dataset) Capabilities() Capabilities { return d.capabilities }

// Cell 取单元格，越界或列不存在时返回缺失值
func (d *Dataset) Cell(row, col int) Value {
	if row < 0 || row >= len(d.rows) || col < 0 || col >= len(d.columns) {
		return Missing()
	}
	r := d.rows[row]
	if col >= len(r) {
		return Missing()
	}
	return r[col]
}

// All 覆盖全部行的视图
func (d *Dataset) All() View {
	rows := make([]int, len(d.rows))
	for i := range rows {
		rows[i] = i
	}
	return View{ds: d, rows: rows}
}

func dominantKind(rows [][]Value, col int) Kind {
	counts := make(map[Kind]int)
	for _, r := range rows {
		if col < len(r) && !r[col].IsMissing() {
			counts[r[col].Kind]++
		}
	}
	best, bestCount := KindMissing, 0
	for _, k := range []Kind{KindText, KindNumber, KindDate} {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
