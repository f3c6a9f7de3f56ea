package presenter

import (
	"sales-dashboard-service/service/dataset"
)

// Column 表格列
type Column struct {
	Name string       `json:"name"`
	Kind dataset.Kind `json:"kind"`
}

// Table 过滤视图的分页表格
type Table struct {
	Columns  []Column          `json:"columns"`
	Rows     [][]dataset.Value `json:"rows"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// NewTable 取视图的一页，size<=0时返回全部行
func NewTable(v dataset.View, page, size int) *Table {
	t := &Table{Total: v.Len(), Page: page, PageSize: size, Columns: []Column{}, Rows: [][]dataset.Value{}}
	ds := v.Dataset()
	if ds == nil {
		return t
	}
	for _, name := range ds.Columns() {
		t.Columns = append(t.Columns, Column{Name: name, Kind: ds.ColumnKind(name)})
	}
	paged := v.Page(page, size)
	for i := 0; i < paged.Len(); i++ {
		t.Rows = append(t.Rows, paged.Row(i))
	}
	return t
}
