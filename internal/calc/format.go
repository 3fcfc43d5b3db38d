package calc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// money0 — сумма без копеек с разделением разрядов пробелами,
// как в печатных формах сметы: 1234567.89 → "1 234 568".
func money0(value decimal.Decimal) string {
	raw := value.Round(0).String()
	negative := strings.HasPrefix(raw, "-")
	digits := strings.TrimPrefix(raw, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// percentStr — процент без хвостовых нулей: 8.00 → "8", 6.20 → "6.2".
func percentStr(value decimal.Decimal) string {
	s := value.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
