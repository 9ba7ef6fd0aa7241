// Package pricing は小計・税・合計の計算。状態を持たない。
package pricing

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// 合計が int64 に収まらない
var ErrTotalOverflow = errors.New("total exceeds int64 range")

// Tax は subtotal × taxPercent / 100 を0方向に切り捨てた税額。
// 四捨五入はしない。
func Tax(subtotal int64, taxPercent decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).
		Mul(taxPercent).
		Div(hundred).
		Truncate(0).
		IntPart()
}

// ComputeTotal は小計に切り捨て後の税額を足した合計。
func ComputeTotal(subtotal int64, taxPercent decimal.Decimal) int64 {
	return subtotal + Tax(subtotal, taxPercent)
}

// CheckedTotal は ComputeTotal と同じ計算で、int64 に収まらなければエラー。
func CheckedTotal(subtotal int64, taxPercent decimal.Decimal) (int64, error) {
	sub := decimal.NewFromInt(subtotal)
	total := sub.Add(sub.Mul(taxPercent).Div(hundred).Truncate(0))
	if total.GreaterThan(maxAmount) || total.LessThan(decimal.Zero) {
		return 0, ErrTotalOverflow
	}
	return total.IntPart(), nil
}

// ParseTaxPercent は入力欄の文字列を税率にする。
// 空・数値でない・負の値は0とみなす。
func ParseTaxPercent(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
