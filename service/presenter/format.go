/*
 * @module service/presenter/format
 * @description 数值展示格式：货币符号、千分位、百分号、2位小数
 * @architecture 工具层
 * @rules 货币与比率四舍五入到2位小数；计数按整数展示；负货币写作-₹1,234.50
 * @dependencies golang.org/x/text/message, github.com/shopspring/decimal
 * @refs service/presenter/cards
 */

package presenter

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard-service/service/aggregate"
)

// DefaultCurrency 默认货币符号
const DefaultCurrency = "₹"

// Formatter 数值格式化器
type Formatter struct {
	currency string
	printer  *message.Printer
}

// NewFormatter 创建格式化器，currency为空时使用默认货币符号
func NewFormatter(currency string) *Formatter {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Formatter{
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// Currency 货币符号
func (f *Formatter) Currency() string { return f.currency }

// Money 货币金额，如₹1,234.50
func (f *Formatter) Money(v float64) string {
	d := decimal.NewFromFloat(aggregate.Round2(v))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + f.currency + f.printer.Sprintf("%.2f", d.InexactFloat64())
}

// Count 整数计数，如1,234
func (f *Formatter) Count(v float64) string {
	t := math.Trunc(v)
	switch {
	case math.IsNaN(t):
		t = 0
	case t >= math.MaxInt64:
		return f.printer.Sprintf("%d", int64(math.MaxInt64))
	case t <= math.MinInt64:
		return f.printer.Sprintf("%d", int64(math.MinInt64))
	}
	return f.printer.Sprintf("%d", int64(t))
}

// Percent 百分比，如12.34%
func (f *Formatter) Percent(v float64) string {
	return f.printer.Sprintf("%.2f", aggregate.Round2(v)) + "%"
}
