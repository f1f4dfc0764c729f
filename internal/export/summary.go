// Package export renders a wallet's transaction history for offline use.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/Aidin1998/wallet_system/pkg/models"
)

// Summary aggregates a set of transactions. TotalDebit is a positive magnitude.
type Summary struct {
	Count       int             `json:"count" yaml:"count"`
	Credits     int             `json:"credits" yaml:"credits"`
	Debits      int             `json:"debits" yaml:"debits"`
	TotalCredit decimal.Decimal `json:"totalCredit" yaml:"totalCredit"`
	TotalDebit  decimal.Decimal `json:"totalDebit" yaml:"totalDebit"`
	Net         decimal.Decimal `json:"net" yaml:"net"`
}

// Summarize totals credits and debits
func Summarize(txs []models.Transaction) Summary {
	s := Summary{
		Count:       len(txs),
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for _, tx := range txs {
		if tx.IsCredit() {
			s.Credits++
			s.TotalCredit = s.TotalCredit.Add(tx.Amount.Abs())
		} else {
			s.Debits++
			s.TotalDebit = s.TotalDebit.Add(tx.Amount.Abs())
		}
	}
	s.Net = s.TotalCredit.Sub(s.TotalDebit)
	return s
}
