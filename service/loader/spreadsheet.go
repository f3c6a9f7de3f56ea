package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readSpreadsheet 读取工作簿的第一个工作表，单元格取原始值
func readSpreadsheet(ctx context.Context, r io.Reader) (*rawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法打开工作簿: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("工作簿中没有工作表")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("工作表没有表头")
	}

	header := rows[0]
	tbl := &rawTable{header: header, serialDates: true}
	for _, row := range rows[1:] {
		// GetRows会截掉行尾空单元格，超出表头的部分忽略
		if len(row) > len(header) {
			row = row[:len(header)]
		}
		tbl.rows = append(tbl.rows, row)
	}
	return tbl, nil
}
