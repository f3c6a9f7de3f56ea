/*
 * @module service/dataset/value
 * @description 单元格值模型，表示文本、数值、日期和缺失四种取值
 * @architecture 领域模型层
 * @stateFlow 加载时创建，之后只读
 * @rules 缺失值不参与求和与分组，排序时始终排在最后
 * @dependencies time, strconv
 */

package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind 单元格值类型
type Kind int

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindDate
)

// DateLayout 日期的文本形式
const DateLayout = "2006-01-02"

const dateTimeLayout = "2006-01-02 15:04:05"

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// MarshalJSON 以类型名称输出
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Value 单元格值
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Date   time.Time
}

// Missing 缺失值
func Missing() Value { return Value{} }

// Text 文本值
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number 数值
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Date 日期值，统一转换为UTC
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t.UTC()} }

// IsMissing 是否缺失
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Float 取数值
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Number, true
}

// Time 取日期
func (v Value) Time() (time.Time, bool) {
	if v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Date, true
}

// String 单元格的可见文本形式
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindDate:
		if v.Date.Hour() == 0 && v.Date.Minute() == 0 && v.Date.Second() == 0 && v.Date.Nanosecond() == 0 {
			return v.Date.Format(DateLayout)
		}
		return v.Date.Format(dateTimeLayout)
	default:
		return ""
	}
}

// MarshalJSON 缺失值输出为null，日期输出为文本
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindDate:
		return json.Marshal(v.String())
	default:
		return []byte("null"), nil
	}
}

// Compare 比较两个值，缺失值总是排在最后；类型不同时按类型顺序比较
func Compare(a, b Value) int {
	if a.IsMissing() || b.IsMissing() {
		switch {
		case a.IsMissing() && b.IsMissing():
			return 0
		case a.IsMissing():
			return 1
		default:
			return -1
		}
	}
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	case KindDate:
		return a.Date.Compare(b.Date)
	default:
		return strings.Compare(a.Text, b.Text)
	}
}
