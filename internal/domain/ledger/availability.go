package ledger

import "github.com/shopspring/decimal"

// Availability figures are quoted at two decimal places.
const availabilityScale = 2

// AvailableCleaned returns the weight of cleaned seed still on hand in
// a series: everything the cleaning line has produced, less every
// withdrawal already taken. Withdrawal entries carry their weight as a
// negative cleaned total, so a plain sum nets them out.
func AvailableCleaned(series []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range series {
		total = total.Add(series[i].CleanedTotal)
	}
	return total.Round(availabilityScale)
}
