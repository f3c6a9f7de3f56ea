package filter

import (
	"slices"

	"sales-dashboard-service/service/dataset"
)

// SortKey 单列排序键
type SortKey struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// SortSpec 多列排序，按顺序依次比较
type SortSpec []SortKey

// Sort 稳定多键排序；缺失值无论升降序都排在最后，数据集中不存在的列被忽略
func Sort(v dataset.View, spec SortSpec) dataset.View {
	ds := v.Dataset()
	if ds == nil || len(spec) == 0 {
		return v
	}

	type key struct {
		col  int
		desc bool
	}
	var keys []key
	for _, k := range spec {
		if idx := ds.ColumnIndex(k.Column); idx >= 0 {
			keys = append(keys, key{col: idx, desc: k.Descending})
		}
	}
	if len(keys) == 0 {
		return v
	}

	rows := v.Indices()
	slices.SortStableFunc(rows, func(a, b int) int {
		for _, k := range keys {
			va, vb := ds.Cell(a, k.col), ds.Cell(b, k.col)
			if va.IsMissing() || vb.IsMissing() {
				if c := dataset.Compare(va, vb); c != 0 {
					return c
				}
				continue
			}
			c := dataset.Compare(va, vb)
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return dataset.NewView(ds, rows)
}
