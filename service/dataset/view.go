package dataset

// View 数据集的只读子集，保存指向原数据集的行号，不复制数据
type View struct {
	ds   *Dataset
	rows []int
}

// NewView 由数据集行号构造视图
func NewView(ds *Dataset, rows []int) View {
	return View{ds: ds, rows: rows}
}

// Dataset 所属数据集
func (v View) Dataset() *Dataset { return v.ds }

// Len 行数
func (v View) Len() int { return len(v.rows) }

// Columns 列名
func (v View) Columns() []string {
	if v.ds == nil {
		return nil
	}
	return v.ds.Columns()
}

// HasColumn 是否存在指定列
func (v View) HasColumn(name string) bool {
	return v.ds != nil && v.ds.HasColumn(name)
}

// RowIndex 第i行在原数据集中的行号
func (v View) RowIndex(i int) int { return v.rows[i] }

// Indices 原数据集行号（副本）
func (v View) Indices() []int {
	return append([]int(nil), v.rows...)
}

// Value 取第i行指定列的值，列不存在时返回缺失值
func (v View) Value(i int, column string) Value {
	if v.ds == nil || i < 0 || i >= len(v.rows) {
		return Missing()
	}
	return v.ds.Cell(v.rows[i], v.ds.ColumnIndex(column))
}

// Row 第i行的全部单元格（按列顺序）
func (v View) Row(i int) []Value {
	cols := len(v.ds.columns)
	out := make([]Value, cols)
	for c := 0; c < cols; c++ {
		out[c] = v.ds.Cell(v.rows[i], c)
	}
	return out
}

// Select 按视图内位置选取子视图
func (v View) Select(positions []int) View {
	rows := make([]int, len(positions))
	for i, p := range positions {
		rows[i] = v.rows[p]
	}
	return View{ds: v.ds, rows: rows}
}

// Page 分页，page从1开始
func (v View) Page(page, size int) View {
	if size <= 0 {
		return v
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(v.rows) {
		return View{ds: v.ds, rows: []int{}}
	}
	end := start + size
	if end > len(v.rows) {
		end = len(v.rows)
	}
	return View{ds: v.ds, rows: v.rows[start:end]}
}
