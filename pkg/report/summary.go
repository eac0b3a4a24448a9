package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ayane-dev/sbireport/pkg/api"
)

// Number of merchants and transactions shown in the terminal summary.
const summaryTopN = 5

// WriteSummary renders the usage summary the way the CLI prints it:
// overall totals, the top five merchants by count and the five most recent
// transactions. The transaction list must already be sorted most recent
// first.
func WriteSummary(w io.Writer, stats Stats, transactions []api.Transaction) {
	fmt.Fprintln(w, "📊 利用サマリー")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "総利用回数: %d 回\n", stats.Count)
	fmt.Fprintf(w, "総利用金額: ¥%s\n", formatAmount(stats.TotalAmount))
	if stats.Count > 0 {
		avg := math.Round(stats.TotalAmount / float64(stats.Count))
		fmt.Fprintf(w, "平均利用額: ¥%s\n", formatAmount(avg))
	}

	fmt.Fprintln(w, "\n🏪 利用回数TOP5加盟店:")
	for _, rank := range TopMerchants(stats, summaryTopN) {
		fmt.Fprintf(w, "  %s: %d回 (¥%s)\n", rank.Merchant, rank.Count, formatAmount(rank.Total))
	}

	fmt.Fprintf(w, "\n📅 最近の利用 (直近%d件):\n", summaryTopN)
	for _, t := range Recent(transactions, summaryTopN) {
		fmt.Fprintf(w, "  %s %s: ¥%s\n", t.TransactionDate, t.Merchant, formatAmount(t.Amount))
	}
}

// formatAmount renders an amount with thousands separators. Whole amounts
// (the usual case for JPY) drop the fraction entirely.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	intPart := s
	var fracPart string
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var sign string
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	return sign + intPart + fracPart
}
