/*
 * @module service/export/exporter
 * @description 导出器，将过滤视图编码为单工作表的xlsx字节流，并按视图内容做可选缓存
 * @architecture 流式写入 - excelize StreamWriter逐行写出
 * @stateFlow 视图 -> 内容哈希 -> 查缓存 -> 编码 -> 写缓存 -> 下载
 * @rules 列头保持原顺序，不输出索引列；缓存键覆盖视图全部内容；缓存故障不影响导出
 * @dependencies github.com/xuri/excelize/v2, github.com/cespare/xxhash/v2
 * @refs service/pipeline, api/controllers/export_controller
 */

package export

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/xuri/excelize/v2"

	"sales-dashboard-service/service/dataset"
)

const (
	FileName    = "filtered_sales_data.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Filtered Data"

	dateFormat     = "yyyy-mm-dd"
	dateTimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// Artifact 导出结果
type Artifact struct {
	FileName    string
	ContentType string
	Key         string
	Data        []byte
	Rows        int
	Cached      bool
}

// Exporter 导出器
type Exporter struct {
	cache Cache
}

// NewExporter 创建导出器，cache为nil时不缓存
func NewExporter(cache Cache) *Exporter {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Exporter{cache: cache}
}

// Export 导出视图，内容相同的视图复用缓存结果
func (e *Exporter) Export(ctx context.Context, v dataset.View) (*Artifact, error) {
	key := ViewKey(v)
	art := &Artifact{FileName: FileName, ContentType: ContentType, Key: key, Rows: v.Len()}

	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("读取导出缓存失败", "key", key, "error", err)
	}
	if ok {
		art.Data, art.Cached = data, true
		return art, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err = Encode(v)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, data); err != nil {
		slog.Warn("写入导出缓存失败", "key", key, "error", err)
	}

	art.Data = data
	return art, nil
}

// Encode 将视图编码为xlsx
func Encode(v dataset.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("设置工作表名称失败: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateFormat)})
	if err != nil {
		return nil, fmt.Errorf("创建日期样式失败: %w", err)
	}
	dateTimeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateTimeFormat)})
	if err != nil {
		return nil, fmt.Errorf("创建日期样式失败: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("创建流式写入器失败: %w", err)
	}

	columns := v.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}

	for i := 0; i < v.Len(); i++ {
		row := v.Row(i)
		cells := make([]interface{}, len(row))
		for c, val := range row {
			switch val.Kind {
			case dataset.KindText:
				cells[c] = val.Text
			case dataset.KindNumber:
				cells[c] = val.Number
			case dataset.KindDate:
				style := dateStyle
				if val.String() != val.Date.Format(dataset.DateLayout) {
					style = dateTimeStyle
				}
				cells[c] = excelize.Cell{StyleID: style, Value: val.Date}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, fmt.Errorf("写入第%d行失败: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("写入工作表失败: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("生成xlsx失败: %w", err)
	}
	return buf.Bytes(), nil
}

// ViewKey 视图内容哈希：列名与全部单元格的类型和文本
func ViewKey(v dataset.View) string {
	h := xxhash.New()
	for _, c := range v.Columns() {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	_, _ = h.Write([]byte{0x1e})
	for i := 0; i < v.Len(); i++ {
		for _, val := range v.Row(i) {
			_, _ = h.Write([]byte{byte(val.Kind)})
			if val.Kind == dataset.KindDate {
				// 文本形式只到秒，日期按纳秒时间戳参与哈希
				_, _ = h.WriteString(strconv.FormatInt(val.Date.UnixNano(), 10))
			} else {
				_, _ = h.WriteString(val.String())
			}
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func strPtr(s string) *string { return &s }
