package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sales-dashboard-service/service/dataset"
)

// readDelimited 读取分隔文本，按声明字符集解码并去除BOM
func readDelimited(ctx context.Context, r io.Reader, delimiter rune, charset string) (*rawTable, error) {
	decoder, err := newDecoder(charset)
	if err != nil {
		return nil, dataset.NewLoadError(dataset.LoadUnsupportedFormat, "", err)
	}

	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(decoder)))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("文件没有表头")
		}
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	tbl := &rawTable{header: header}
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析第%d行失败: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("第%d行有%d个字段，表头只有%d列", line, len(record), len(header))
		}
		tbl.rows = append(tbl.rows, record)
	}
	return tbl, nil
}

// newDecoder 按名称查找字符集解码器，支持utf-8、gbk、gb18030、latin1、windows-1252等
func newDecoder(charset string) (transform.Transformer, error) {
	name := strings.TrimSpace(charset)
	if name == "" {
		return encoding.Nop.NewDecoder(), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("不支持的字符集 %q: %w", charset, err)
	}
	return enc.NewDecoder(), nil
}
