/*
 * @module service/filter/filter
 * @description 过滤引擎，按条件集合对数据集视图做单次遍历过滤，生成新的视图
 * @architecture 纯函数 - 相同输入总是得到相同输出，不修改原数据集
 * @stateFlow 条件集合 -> 解析列位置 -> 逐行按AND组合判断 -> 新视图
 * @rules 谓词之间只做AND；空选择视为未启用；数据集缺少的列上的谓词静默跳过；日期区间按自然日闭区间比较
 * @dependencies service/dataset
 * @refs service/pipeline
 */

package filter

import (
	"time"

	"sales-dashboard-service/service/dataset"
)

// Predicate 作用于单列的过滤条件
type Predicate interface {
	Column() string
	// Active 未启用的谓词不参与过滤
	Active() bool
	Match(v dataset.Value) bool
}

// membership 分类列成员判断
type membership struct {
	column string
	values map[string]struct{}
}

// In 分类列取值属于选中集合，选中集合为空时谓词不启用
func In(column string, values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return membership{column: column, values: set}
}

func (m membership) Column() string { return m.column }

func (m membership) Active() bool { return len(m.values) > 0 }

func (m membership) Match(v dataset.Value) bool {
	if v.IsMissing() {
		return false
	}
	_, ok := m.values[v.String()]
	return ok
}

// dateRange 日期列闭区间
type dateRange struct {
	column     string
	start, end *time.Time
}

// Between 日期在[start, end]之间（按自然日），只提供一个端点时谓词不启用
func Between(column string, start, end *time.Time) Predicate {
	return dateRange{column: column, start: start, end: end}
}

func (d dateRange) Column() string { return d.column }

func (d dateRange) Active() bool { return d.start != nil && d.end != nil }

func (d dateRange) Match(v dataset.Value) bool {
	t, ok := v.Time()
	if !ok {
		return false
	}
	day := truncateDay(t)
	return !day.Before(truncateDay(*d.start)) && !day.After(truncateDay(*d.end))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Criteria 谓词集合，按AND组合
type Criteria struct {
	predicates []Predicate
}

// NewCriteria 创建条件集合，nil谓词被忽略
func NewCriteria(predicates ...Predicate) Criteria {
	var c Criteria
	return c.And(predicates...)
}

// And 返回追加了谓词的新条件集合，原集合不变
func (c Criteria) And(predicates ...Predicate) Criteria {
	out := make([]Predicate, 0, len(c.predicates)+len(predicates))
	out = append(out, c.predicates...)
	for _, p := range predicates {
		if p != nil {
			out = append(out, p)
		}
	}
	return Criteria{predicates: out}
}

// Merge 两个条件集合的合取
func (c Criteria) Merge(other Criteria) Criteria {
	return c.And(other.predicates...)
}

// Predicates 全部谓词（副本）
func (c Criteria) Predicates() []Predicate {
	return append([]Predicate(nil), c.predicates...)
}

// Effective 在给定列集合上实际生效的谓词
func (c Criteria) Effective(v dataset.View) []Predicate {
	var out []Predicate
	for _, p := range c.predicates {
		if p.Active() && v.HasColumn(p.Column()) {
			out = append(out, p)
		}
	}
	return out
}

// Apply 过滤视图，保持原有行顺序
func Apply(v dataset.View, c Criteria) dataset.View {
	ds := v.Dataset()
	if ds == nil {
		return v
	}

	type bound struct {
		col int
		p   Predicate
	}
	var active []bound
	for _, p := range c.Effective(v) {
		active = append(active, bound{col: ds.ColumnIndex(p.Column()), p: p})
	}
	if len(active) == 0 {
		return v
	}

	rows := make([]int, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r := v.RowIndex(i)
		keep := true
		for _, b := range active {
			if !b.p.Match(ds.Cell(r, b.col)) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, r)
		}
	}
	return dataset.NewView(ds, rows)
}
