package walletapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/notification"
	"github.com/Aidin1998/wallet_system/pkg/metrics"
	"github.com/Aidin1998/wallet_system/pkg/models"
	"github.com/Aidin1998/wallet_system/testutil"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func newClient(t *testing.T, baseURL string, opts ...Option) (*Client, *notification.Recorder) {
	t.Helper()
	rec := &notification.Recorder{}
	c, err := New(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, rec, zap.NewNop(), opts...)
	require.NoError(t, err)
	return c, rec
}

func TestNew(t *testing.T) {
	c, err := New(Config{BaseURL: "http://localhost:3002/"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3002", c.BaseURL())

	for _, bad := range []string{"", "localhost:3002", "ftp://host", "http://"} {
		_, err := New(Config{BaseURL: bad}, nil, nil)
		assert.Error(t, err, bad)
	}
}

func TestSetupWalletSuccess(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)

	res := c.SetupWallet(context.Background(), "Test Wallet", decimal.Zero)

	require.True(t, res.Success)
	require.NotNil(t, res.Data)
	assert.Empty(t, res.Error)
	assert.Equal(t, "Test Wallet", res.Data.Name)
	assert.True(t, res.Data.Balance.IsZero())
	assert.NotEmpty(t, res.Data.ID)
	assert.NotEmpty(t, res.Data.Date)

	assert.Equal(t, []string{MsgSetupSuccess}, rec.Successes())
	assert.Empty(t, rec.Errors())

	req := srv.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/setup", req.Path)
	assert.JSONEq(t, `{"name":"Test Wallet","balance":0}`, string(req.Body))
}

func TestSetupWalletFailure(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)
	srv.FailNext(http.StatusInternalServerError, "Wallet setup failed")

	res := c.SetupWallet(context.Background(), "Test Wallet", decimal.Zero)

	assert.Equal(t, models.Fail[models.Wallet]("Wallet setup failed"), res)
	assert.Nil(t, res.Data)
	assert.Equal(t, []string{"Wallet setup failed"}, rec.Errors())
	assert.Empty(t, rec.Successes())
}

func TestSetupWalletFallbackMessage(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)
	srv.FailNext(http.StatusBadGateway, nil)

	res := c.SetupWallet(context.Background(), "Test Wallet", decimal.Zero)

	assert.False(t, res.Success)
	assert.Equal(t, MsgSetupFailed, res.Error)
	assert.Equal(t, []string{MsgSetupFailed}, rec.Errors())
}

func TestSetupWalletValidationMessages(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)
	srv.FailNext(http.StatusBadRequest, []string{"name should not be empty", "balance must be a number"})

	res := c.SetupWallet(context.Background(), "", decimal.Zero)

	assert.Equal(t, "name should not be empty; balance must be a number", res.Error)
	assert.Len(t, rec.Errors(), 1)
}

func TestGetWallet(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Savings", "150.25")
	c, rec := newClient(t, srv.URL)

	res := c.GetWallet(context.Background(), id)

	w, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, "Savings", w.Name)
	assert.True(t, decimal.RequireFromString("150.25").Equal(w.Balance))
	assert.Empty(t, rec.Entries())
	assert.Equal(t, "/wallet/"+id, srv.LastRequest().Path)
}

func TestGetWalletNotFound(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)

	res := c.GetWallet(context.Background(), "missing")

	assert.False(t, res.Success)
	assert.Equal(t, "Wallet not found", res.Error)
	assert.Equal(t, []string{"Wallet not found"}, rec.Errors())
	assert.Empty(t, rec.Successes())
}

func TestGetWalletIdempotent(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "10")
	c, _ := newClient(t, srv.URL)

	first := c.GetWallet(context.Background(), id)
	second := c.GetWallet(context.Background(), id)

	assert.Equal(t, first, second)
	assert.Len(t, srv.Requests(), 2)
}

func TestGetWalletEmptyID(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)

	res := c.GetWallet(context.Background(), " ")

	assert.Equal(t, MsgFetchWalletFailed, res.Error)
	assert.Equal(t, []string{MsgFetchWalletFailed}, rec.Errors())
	assert.Empty(t, srv.Requests())
}

func TestUpdateWalletBalance(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "100")
	c, rec := newClient(t, srv.URL)

	res := c.UpdateWalletBalance(context.Background(), id, decimal.RequireFromString("-25.5"), "")

	upd, ok := res.Value()
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("74.5").Equal(upd.Balance))
	assert.Equal(t, []string{MsgUpdateSuccess}, rec.Successes())
	assert.Empty(t, rec.Errors())

	req := srv.LastRequest()
	assert.Equal(t, "/transact/"+id, req.Path)
	assert.JSONEq(t, `{"amount":-25.5,"description":"Transaction"}`, string(req.Body))
}

func TestUpdateWalletBalanceRejected(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "5")
	c, rec := newClient(t, srv.URL)

	res := c.UpdateWalletBalance(context.Background(), id, decimal.NewFromInt(-10), "Groceries")

	assert.False(t, res.Success)
	assert.Equal(t, "Insufficient balance", res.Error)
	assert.Equal(t, []string{"Insufficient balance"}, rec.Errors())
	assert.Empty(t, rec.Successes())

	balance, _ := srv.Balance(id)
	assert.True(t, decimal.NewFromInt(5).Equal(balance))
}

func TestGetTransactions(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "100")
	c, rec := newClient(t, srv.URL)
	ctx := context.Background()

	for _, amount := range []int64{20, -5, 7} {
		require.True(t, c.UpdateWalletBalance(ctx, id, decimal.NewFromInt(amount), "entry").Success)
	}
	rec.Reset()

	res := c.GetTransactions(ctx, id, TransactionQuery{Skip: 0, Limit: 10, SortBy: "date", Order: OrderAsc})

	list, ok := res.Value()
	require.True(t, ok)
	assert.EqualValues(t, 4, list.Total)
	require.Len(t, list.Transactions, 4)
	assert.Equal(t, models.TransactionCredit, list.Transactions[0].Type)
	assert.Equal(t, models.TransactionDebit, list.Transactions[2].Type)
	assert.True(t, decimal.NewFromInt(115).Equal(list.Transactions[2].Balance))
	assert.Empty(t, rec.Entries())

	req := srv.LastRequest()
	assert.Equal(t, "/transactions", req.Path)
	assert.Len(t, req.Query, 5)
	assert.Equal(t, id, req.Query.Get("walletId"))
	assert.Equal(t, "0", req.Query.Get("skip"))
	assert.Equal(t, "10", req.Query.Get("limit"))
	assert.Equal(t, "date", req.Query.Get("sortBy"))
	assert.Equal(t, "asc", req.Query.Get("order"))
}

func TestGetTransactionsDefaultsAndPaging(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "1")
	c, _ := newClient(t, srv.URL)
	ctx := context.Background()

	for i := int64(1); i <= 12; i++ {
		require.True(t, c.UpdateWalletBalance(ctx, id, decimal.NewFromInt(i), "entry").Success)
	}

	res := c.GetTransactions(ctx, id, TransactionQuery{})
	list, ok := res.Value()
	require.True(t, ok)
	assert.EqualValues(t, 13, list.Total)
	assert.Len(t, list.Transactions, 10)
	q := srv.LastRequest().Query
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "date", q.Get("sortBy"))
	assert.Equal(t, "asc", q.Get("order"))

	res = c.GetTransactions(ctx, id, TransactionQuery{Skip: 10, Limit: 10, SortBy: "amount", Order: OrderDesc})
	list, ok = res.Value()
	require.True(t, ok)
	require.Len(t, list.Transactions, 3)
	assert.True(t, decimal.NewFromInt(2).Equal(list.Transactions[0].Amount))
	assert.True(t, decimal.NewFromInt(1).Equal(list.Transactions[2].Amount))
}

func TestGetTransactionsFailure(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)
	srv.FailNext(http.StatusServiceUnavailable, nil)

	res := c.GetTransactions(context.Background(), "w1", TransactionQuery{})

	assert.Equal(t, models.Fail[models.TransactionList](MsgFetchTxFailed), res)
	assert.Equal(t, []string{MsgFetchTxFailed}, rec.Errors())
}

func TestGetAllTransactions(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "1")
	c, rec := newClient(t, srv.URL)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.True(t, c.UpdateWalletBalance(ctx, id, decimal.NewFromInt(1), "entry").Success)
	}
	rec.Reset()

	res := c.GetAllTransactions(ctx, id)

	list, ok := res.Value()
	require.True(t, ok)
	assert.EqualValues(t, 16, list.Total)
	assert.Len(t, list.Transactions, 16)
	assert.Empty(t, rec.Entries())

	q := srv.LastRequest().Query
	assert.Len(t, q, 2)
	assert.Equal(t, id, q.Get("walletId"))
	assert.Equal(t, "true", q.Get("exportAll"))
}

func TestGetAllTransactionsFailure(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, rec := newClient(t, srv.URL)

	res := c.GetAllTransactions(context.Background(), "unknown")

	assert.Equal(t, "Wallet not found", res.Error)
	assert.Equal(t, []string{"Wallet not found"}, rec.Errors())
}

func TestRequestHeaders(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	c, _ := newClient(t, srv.URL)

	c.SetupWallet(context.Background(), "Headers", decimal.Zero)
	c.SetupWallet(context.Background(), "Headers", decimal.Zero)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get(HeaderRequestID))
		assert.NoError(t, err)
	}
	assert.NotEqual(t, reqs[0].Header.Get(HeaderRequestID), reqs[1].Header.Get(HeaderRequestID))
}

func TestTransportFailure(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	url := srv.URL
	srv.Close()
	c, rec := newClient(t, url)

	res := c.UpdateWalletBalance(context.Background(), "w1", decimal.NewFromInt(1), "x")

	assert.Equal(t, MsgUpdateFailed, res.Error)
	assert.Equal(t, []string{MsgUpdateFailed}, rec.Errors())
	assert.Empty(t, rec.Successes())
}

func TestUndecodableBody(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("<html>oops</html>")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})
	c, rec := newClient(t, "http://wallet.test", WithHTTPClient(doer))

	res := c.GetWallet(context.Background(), "w1")

	assert.Equal(t, MsgFetchWalletFailed, res.Error)
	assert.Equal(t, []string{MsgFetchWalletFailed}, rec.Errors())
}

func TestNonJSONErrorBody(t *testing.T) {
	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("Bad Gateway")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})
	c, _ := newClient(t, "http://wallet.test/api", WithHTTPClient(doer))

	res := c.GetTransactions(context.Background(), "w1", TransactionQuery{})

	assert.Equal(t, MsgFetchTxFailed, res.Error)
}

func TestEndpointEscapesWalletID(t *testing.T) {
	c, _ := newClient(t, "http://wallet.test/api")

	assert.Equal(t, "http://wallet.test/api/wallet/a%2Fb", c.endpoint([]string{"wallet", "a/b"}, nil))
	assert.Equal(t, "http://wallet.test/api/transactions?exportAll=true&walletId=w1",
		c.endpoint([]string{"transactions"}, map[string][]string{"walletId": {"w1"}, "exportAll": {"true"}}))
}

func TestMetrics(t *testing.T) {
	srv := testutil.NewWalletServer(t)
	id := srv.Seed("Daily", "10")
	reg := prometheus.NewRegistry()
	m, err := metrics.NewClientMetrics(reg)
	require.NoError(t, err)
	c, _ := newClient(t, srv.URL, WithMetrics(m))
	ctx := context.Background()

	c.GetWallet(ctx, id)
	c.GetWallet(ctx, "missing")
	c.GetWallet(ctx, id)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.Requests.WithLabelValues(OpGetWallet, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Requests.WithLabelValues(OpGetWallet, metrics.OutcomeFailure)))
	assert.Equal(t, 1, promtest.CollectAndCount(m.Latency))
}
