package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEnvelope(t *testing.T) {
	ok := OK(Wallet{ID: "w1"})
	assert.True(t, ok.Success)
	require.NotNil(t, ok.Data)
	assert.Empty(t, ok.Error)
	w, has := ok.Value()
	assert.True(t, has)
	assert.Equal(t, "w1", w.ID)

	fail := Fail[Wallet]("Failed to fetch wallet")
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Data)
	assert.Equal(t, "Failed to fetch wallet", fail.Error)
	_, has = fail.Value()
	assert.False(t, has)

	raw, err := json.Marshal(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Failed to fetch wallet"}`, string(raw))
}

func TestWalletUnmarshal(t *testing.T) {
	var w Wallet
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","name":"Main","balance":12.5,"createdDate":"2024-05-01"}`), &w))
	assert.Equal(t, "2024-05-01", w.Date)
	assert.True(t, decimal.RequireFromString("12.5").Equal(w.Balance))

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","balance":"3","date":"2024-06-01","createdDate":"ignored"}`), &w))
	assert.Equal(t, "2024-06-01", w.Date)
	assert.Equal(t, "b", w.ID)
}

func TestTransactionIsCredit(t *testing.T) {
	assert.True(t, Transaction{Type: TransactionCredit, Amount: decimal.NewFromInt(-1)}.IsCredit())
	assert.False(t, Transaction{Type: TransactionDebit, Amount: decimal.NewFromInt(1)}.IsCredit())
	assert.True(t, Transaction{Amount: decimal.NewFromInt(5)}.IsCredit())
	assert.False(t, Transaction{Amount: decimal.NewFromInt(-5)}.IsCredit())
}
