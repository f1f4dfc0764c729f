package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType tells whether a transaction added or removed funds
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Transaction is a single ledger entry of a wallet. Transactions are produced by the
// service and are never modified client side.
type Transaction struct {
	ID          string          `json:"id"`
	WalletID    string          `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Type        TransactionType `json:"type"`
}

// IsCredit reports whether the transaction added funds. Entries without a type
// fall back to the sign of the amount.
func (t Transaction) IsCredit() bool {
	switch t.Type {
	case TransactionCredit:
		return true
	case TransactionDebit:
		return false
	default:
		return !t.Amount.IsNegative()
	}
}

// TransactionList is one page (or the full set) of a wallet's transactions.
type TransactionList struct {
	Total        int64         `json:"total"`
	Transactions []Transaction `json:"transactions"`
}
