package ledger

import (
	"github.com/shopspring/decimal"
)

const weiDecimals = 18

// FormatEth renders a wei amount as ETH with trailing zeros trimmed.
func FormatEth(wei string) string {
	if wei == "" {
		return "0 ETH"
	}
	amount, err := decimal.NewFromString(wei)
	if err != nil || amount.IsZero() {
		return "0 ETH"
	}
	return amount.Shift(-weiDecimals).String() + " ETH"
}
