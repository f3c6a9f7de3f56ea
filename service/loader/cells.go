package loader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"sales-dashboard-service/service/dataset"
)

// rawTable 读取器输出的原始文本单元格
type rawTable struct {
	header []string
	rows   [][]string
	// 电子表格以原始值读取，日期单元格为序列号
	serialDates bool
}

// 视为缺失值的文本
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
	"NaT":  true,
}

// 常见日期格式，月在日前
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// convert 按列推断类型：日期列逐格解析，其余列全部可解析为数值时为数值列，否则为文本列
func (l *Loader) convert(columns []string, tbl *rawTable) ([][]dataset.Value, []dataset.ParseError) {
	width := len(columns)
	rows := make([][]dataset.Value, len(tbl.rows))
	for i := range rows {
		rows[i] = make([]dataset.Value, width)
	}

	var parseErrors []dataset.ParseError
	for c, name := range columns {
		if l.dateColumns[name] {
			for r, raw := range tbl.rows {
				cell := cellText(raw, c)
				if missingTokens[cell] {
					continue
				}
				t, ok := parseDate(cell, tbl.serialDates)
				if !ok {
					// 数据行从表头之后的第2行开始计
					parseErrors = append(parseErrors, dataset.ParseError{Column: name, Row: r + 2, Raw: cell})
					continue
				}
				rows[r][c] = dataset.Date(t)
			}
			continue
		}

		numeric := true
		nums := make([]float64, len(tbl.rows))
		present := make([]bool, len(tbl.rows))
		for r, raw := range tbl.rows {
			cell := cellText(raw, c)
			if missingTokens[cell] {
				continue
			}
			f, ok := parseNumber(cell)
			if !ok {
				numeric = false
				break
			}
			nums[r], present[r] = f, true
		}

		for r, raw := range tbl.rows {
			cell := cellText(raw, c)
			if missingTokens[cell] {
				continue
			}
			if numeric && present[r] {
				rows[r][c] = dataset.Number(nums[r])
			} else {
				rows[r][c] = dataset.Text(cell)
			}
		}
	}
	return rows, parseErrors
}

func cellText(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseNumber(s string) (float64, bool) {
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseDate 解析日期文本；电子表格中的数值按Excel序列号转换
func parseDate(s string, serial bool) (time.Time, bool) {
	if serial {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(f, false)
			if err != nil {
				return time.Time{}, false
			}
			return t.UTC(), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
