package walletapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Aidin1998/wallet_system/pkg/models"
)

// Operation names, used in logs and metrics
const (
	OpSetupWallet        = "setup_wallet"
	OpGetWallet          = "get_wallet"
	OpUpdateBalance      = "update_wallet_balance"
	OpGetTransactions    = "get_transactions"
	OpGetAllTransactions = "get_all_transactions"
)

// User facing messages
const (
	MsgSetupSuccess  = "Wallet setup successfully!"
	MsgUpdateSuccess = "Balance updated successfully!"

	MsgSetupFailed           = "Failed to setup wallet"
	MsgFetchWalletFailed     = "Failed to fetch wallet"
	MsgUpdateFailed          = "Failed to update balance"
	MsgFetchTxFailed         = "Failed to fetch transactions"
	MsgFetchAllTxFailed      = "Failed to fetch all transactions"
	DefaultTransactionReason = "Transaction"
)

// SortOrder is the direction of a transaction listing
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// TransactionQuery pages and sorts a transaction listing. Zero fields take
// the defaults: skip 0, limit 10, sorted by date ascending.
type TransactionQuery struct {
	Skip   int
	Limit  int
	SortBy string
	Order  SortOrder
}

const (
	defaultLimit  = 10
	defaultSortBy = "date"
)

func (q TransactionQuery) withDefaults() TransactionQuery {
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if q.Order == "" {
		q.Order = OrderAsc
	}
	return q
}

// SetupWallet creates a wallet holding initialBalance
func (c *Client) SetupWallet(ctx context.Context, name string, initialBalance decimal.Decimal) models.Response[models.Wallet] {
	return execute[models.Wallet](ctx, c, request{
		operation: OpSetupWallet,
		method:    http.MethodPost,
		path:      []string{"setup"},
		body: models.SetupRequest{
			Name:    name,
			Balance: json.Number(initialBalance.String()),
		},
		fallback: MsgSetupFailed,
		success:  MsgSetupSuccess,
	})
}

// GetWallet fetches one wallet
func (c *Client) GetWallet(ctx context.Context, walletID string) models.Response[models.Wallet] {
	return execute[models.Wallet](ctx, c, request{
		operation: OpGetWallet,
		method:    http.MethodGet,
		path:      []string{"wallet", walletID},
		scoped:    true,
		walletID:  walletID,
		fallback:  MsgFetchWalletFailed,
	})
}

// UpdateWalletBalance applies a signed amount to the wallet. An empty
// description is sent as "Transaction".
func (c *Client) UpdateWalletBalance(ctx context.Context, walletID string, amount decimal.Decimal, description string) models.Response[models.BalanceUpdate] {
	if description == "" {
		description = DefaultTransactionReason
	}
	return execute[models.BalanceUpdate](ctx, c, request{
		operation: OpUpdateBalance,
		method:    http.MethodPost,
		path:      []string{"transact", walletID},
		scoped:    true,
		walletID:  walletID,
		body: models.TransactRequest{
			Amount:      json.Number(amount.String()),
			Description: description,
		},
		fallback: MsgUpdateFailed,
		success:  MsgUpdateSuccess,
	})
}

// GetTransactions fetches one page of the wallet's transactions
func (c *Client) GetTransactions(ctx context.Context, walletID string, q TransactionQuery) models.Response[models.TransactionList] {
	q = q.withDefaults()
	res := execute[models.TransactionList](ctx, c, request{
		operation: OpGetTransactions,
		method:    http.MethodGet,
		path:      []string{"transactions"},
		scoped:    true,
		walletID:  walletID,
		query: url.Values{
			"walletId": {walletID},
			"skip":     {strconv.Itoa(q.Skip)},
			"limit":    {strconv.Itoa(q.Limit)},
			"sortBy":   {q.SortBy},
			"order":    {string(q.Order)},
		},
		fallback: MsgFetchTxFailed,
	})
	if list, ok := res.Value(); ok {
		return models.OK(models.TransactionList{Total: list.Total, Transactions: list.Transactions})
	}
	return res
}

// GetAllTransactions fetches the complete transaction history of the wallet
func (c *Client) GetAllTransactions(ctx context.Context, walletID string) models.Response[models.TransactionList] {
	return execute[models.TransactionList](ctx, c, request{
		operation: OpGetAllTransactions,
		method:    http.MethodGet,
		path:      []string{"transactions"},
		scoped:    true,
		walletID:  walletID,
		query: url.Values{
			"walletId":  {walletID},
			"exportAll": {"true"},
		},
		fallback: MsgFetchAllTxFailed,
	})
}
