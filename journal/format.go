package journal

import (
	"fmt"
	"strings"
)

// FormatTrade renders one trade row for the CLI.
func FormatTrade(rec TradeRecord) string {
	var b strings.Builder

	name := rec.Name
	if name == "" {
		name = "-"
	}

	fmt.Fprintf(&b, "%s  %s (%s)  %s\n", rec.TradeID, name, rec.Code, rec.Status)
	switch rec.Status {
	case StatusOrphan:
		fmt.Fprintf(&b, "  sell %d @ %s (no matching open trade)",
			rec.SellPrice, rec.CloseTime.Format("2006-01-02 15:04:05"))
	case StatusOpen:
		fmt.Fprintf(&b, "  buy  %d x %d @ %s  basis %.0f  slip %+.3f%%",
			rec.Quantity, rec.BuyPrice, rec.OpenTime.Format("2006-01-02 15:04:05"),
			rec.Basis, rec.SlippagePct)
	default:
		fmt.Fprintf(&b, "  buy  %d x %d @ %s  basis %.0f  slip %+.3f%%\n",
			rec.Quantity, rec.BuyPrice, rec.OpenTime.Format("2006-01-02 15:04:05"),
			rec.Basis, rec.SlippagePct)
		fmt.Fprintf(&b, "  sell %d @ %s  held %dd  return %+.2f%%",
			rec.SellPrice, rec.CloseTime.Format("2006-01-02 15:04:05"),
			rec.HoldingDays, rec.ReturnPct)
	}
	return b.String()
}

// FormatTrades renders a set of rows with a count footer.
func FormatTrades(recs []TradeRecord) string {
	if len(recs) == 0 {
		return "no trades"
	}

	lines := make([]string, 0, len(recs)+1)
	for _, rec := range recs {
		lines = append(lines, FormatTrade(rec))
	}
	lines = append(lines, fmt.Sprintf("%d trade(s)", len(recs)))
	return strings.Join(lines, "\n")
}
