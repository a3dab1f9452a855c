package money

import "github.com/dustin/go-humanize"

// Format сумма с разделителями тысяч: 60000 -> "$60,000"
func Format(amount int64) string {
	if amount < 0 {
		return "-$" + humanize.Comma(-amount)
	}
	return "$" + humanize.Comma(amount)
}
