/*
 * @module service/aggregate/aggregate
 * @description 聚合器，在过滤视图上计算合计、去重计数、比率与分组合计
 * @architecture 纯函数 - 只读访问视图，不保留计算状态
 * @stateFlow 视图 -> 逐行读取数值列 -> 合计/分组 -> 结果
 * @rules 缺失值既不计入合计，也不产生分组键；比率分母为0时结果为0；比率四舍五入到2位小数
 * @dependencies github.com/shopspring/decimal
 * @refs service/pipeline, service/presenter
 */

package aggregate

import (
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"sales-dashboard-service/service/dataset"
)

// MonthLayout 按月分桶的键格式
const MonthLayout = "2006-01"

// Round2 四舍五入到2位小数（远离零方向）；NaN按0处理，无穷大截断到±MaxFloat64
func Round2(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return ToFloat(decimal.NewFromFloat(f).Round(2))
}

// ToFloat 转换为float64，超出float64范围时截断到±MaxFloat64
func ToFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// cellDecimal 数值单元格转为decimal，缺失或非有限值返回false
func cellDecimal(v dataset.Value) (decimal.Decimal, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// sum 数值列的精确合计
func sum(v dataset.View, column string) decimal.Decimal {
	total := decimal.Zero
	ds := v.Dataset()
	if ds == nil {
		return total
	}
	col := ds.ColumnIndex(column)
	if col < 0 {
		return total
	}
	for i := 0; i < v.Len(); i++ {
		if d, ok := cellDecimal(ds.Cell(v.RowIndex(i), col)); ok {
			total = total.Add(d)
		}
	}
	return total
}

// Total 数值列合计，空视图或列不存在时为0
func Total(v dataset.View, column string) float64 {
	return ToFloat(sum(v, column))
}

// Mean 数值列的平均值，只统计非缺失值；没有值时为0
func Mean(v dataset.View, column string) float64 {
	ds := v.Dataset()
	if ds == nil {
		return 0
	}
	col := ds.ColumnIndex(column)
	if col < 0 {
		return 0
	}
	total, n := decimal.Zero, 0
	for i := 0; i < v.Len(); i++ {
		if d, ok := cellDecimal(ds.Cell(v.RowIndex(i), col)); ok {
			total = total.Add(d)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return ToFloat(total.Div(decimal.NewFromInt(int64(n))))
}

// DistinctCount 非缺失值的去重计数
func DistinctCount(v dataset.View, column string) int {
	ds := v.Dataset()
	if ds == nil {
		return 0
	}
	col := ds.ColumnIndex(column)
	if col < 0 {
		return 0
	}
	seen := make(map[string]struct{})
	for i := 0; i < v.Len(); i++ {
		cell := ds.Cell(v.RowIndex(i), col)
		if cell.IsMissing() {
			continue
		}
		seen[cell.Kind.String()+":"+cell.String()] = struct{}{}
	}
	return len(seen)
}

// Ratio total(numerator)/total(denominator)*100，保留2位小数；分母合计为0时返回0
func Ratio(v dataset.View, numerator, denominator string) float64 {
	den := sum(v, denominator)
	if den.IsZero() {
		return 0
	}
	return ToFloat(sum(v, numerator).Mul(decimal.NewFromInt(100)).DivRound(den, 2))
}

// Group 分组合计结果
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Bucket 将单元格映射为分组键，返回false表示该行不参与分组
type Bucket func(v dataset.Value) (dataset.Value, bool)

// ByValue 按原值分组
func ByValue(v dataset.Value) (dataset.Value, bool) {
	return v, !v.IsMissing()
}

// ByMonth 日期按自然月分桶
func ByMonth(v dataset.Value) (dataset.Value, bool) {
	t, ok := v.Time()
	if !ok {
		return dataset.Missing(), false
	}
	return dataset.Text(t.Format(MonthLayout)), true
}

// GroupSum 按分组列合计数值列；分组列为日期列时按月分桶
func GroupSum(v dataset.View, groupColumn, valueColumn string) []Group {
	bucket := ByValue
	if ds := v.Dataset(); ds != nil && ds.ColumnKind(groupColumn) == dataset.KindDate {
		bucket = ByMonth
	}
	return GroupSumBy(v, groupColumn, valueColumn, bucket)
}

// GroupSumBy 使用指定分桶函数的分组合计，结果按键升序
func GroupSumBy(v dataset.View, groupColumn, valueColumn string, bucket Bucket) []Group {
	ds := v.Dataset()
	if ds == nil {
		return []Group{}
	}
	gcol, vcol := ds.ColumnIndex(groupColumn), ds.ColumnIndex(valueColumn)
	if gcol < 0 || vcol < 0 {
		return []Group{}
	}

	type acc struct {
		key   dataset.Value
		sum   decimal.Decimal
		count int
	}
	groups := make(map[string]*acc)
	for i := 0; i < v.Len(); i++ {
		r := v.RowIndex(i)
		key, ok := bucket(ds.Cell(r, gcol))
		if !ok {
			continue
		}
		name := key.String()
		g, exists := groups[name]
		if !exists {
			g = &acc{key: key, sum: decimal.Zero}
			groups[name] = g
		}
		g.count++
		if d, ok := cellDecimal(ds.Cell(r, vcol)); ok {
			g.sum = g.sum.Add(d)
		}
	}

	accs := make([]*acc, 0, len(groups))
	for _, g := range groups {
		accs = append(accs, g)
	}
	slices.SortFunc(accs, func(a, b *acc) int {
		if c := dataset.Compare(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.key.String(), b.key.String())
	})

	out := make([]Group, len(accs))
	for i, g := range accs {
		out[i] = Group{Key: g.key.String(), Value: ToFloat(g.sum), Count: g.count}
	}
	return out
}

// TopN 取合计最大的n个分组，按合计升序返回（最大值在最后）；合计相同时按键排序
func TopN(groups []Group, n int) []Group {
	if n <= 0 {
		return []Group{}
	}
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b Group) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	slices.Reverse(sorted)
	return sorted
}
