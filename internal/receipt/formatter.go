// Package receipt はレシート文字列の組み立てと、ファイルへの保存。
package receipt

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// レシートの時刻表記
	TimeLayout = "2006-01-02 15:04:05"

	nameWidth    = 15
	nameKeep     = 12
	qtyWidth     = 3
	amountWidth  = 9
	ruleWidth    = 26
	totalPadding = 20
)

var printer = message.NewPrinter(language.English)

// Line はレシート1行分（会計時点の名前・数量・小計）
type Line struct {
	Name     string
	Quantity int64
	Subtotal int64
}

// Rupiah は "Rp6,660" の形式にする。
func Rupiah(amount int64) string {
	return "Rp" + printer.Sprintf("%d", amount)
}

// Format は固定幅のレシート本文を返す。末尾に改行は付けない。
// 画面表示とファイル保存はこの戻り値をそのまま使う。
func Format(soldAt time.Time, total int64, lines []Line) string {
	rule := strings.Repeat("-", ruleWidth)

	out := make([]string, 0, len(lines)+10)
	out = append(out,
		"      === RECEIPT ===",
		"",
		"Time: "+soldAt.Format(TimeLayout),
		rule,
		fmt.Sprintf("%-*s %*s %*s", nameWidth, "Item", qtyWidth, "Qty", amountWidth, "Subtotal"),
		rule,
	)

	for _, l := range lines {
		out = append(out, fmt.Sprintf("%s %*d %*s",
			displayName(l.Name), qtyWidth, l.Quantity, amountWidth, Rupiah(l.Subtotal)))
	}

	out = append(out,
		rule,
		fmt.Sprintf("%*s %*s", totalPadding, "TOTAL", amountWidth, Rupiah(total)),
		"",
		"Thank you for your purchase!",
	)

	return strings.Join(out, "\n")
}

// 15文字を超える名前は12文字＋"..."、それ以外は15桁に左寄せ
func displayName(name string) string {
	r := []rune(name)
	if len(r) > nameWidth {
		return string(r[:nameKeep]) + "..."
	}
	return fmt.Sprintf("%-*s", nameWidth, name)
}
