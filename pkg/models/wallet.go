package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Wallet is the wallet record mirrored from the wallet service.
type Wallet struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Date    string          `json:"date"`
}

// UnmarshalJSON accepts the creation date under either "date" or "createdDate".
func (w *Wallet) UnmarshalJSON(data []byte) error {
	type plain Wallet
	var aux struct {
		plain
		CreatedDate string `json:"createdDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*w = Wallet(aux.plain)
	if w.Date == "" {
		w.Date = aux.CreatedDate
	}
	return nil
}

// BalanceUpdate is returned by the service after a transaction is applied.
type BalanceUpdate struct {
	Balance decimal.Decimal `json:"balance"`
}

// SetupRequest is the body of POST /setup.
type SetupRequest struct {
	Name    string      `json:"name"`
	Balance json.Number `json:"balance"`
}

// TransactRequest is the body of POST /transact/{id}. Amount is signed:
// positive credits the wallet, negative debits it.
type TransactRequest struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
}
