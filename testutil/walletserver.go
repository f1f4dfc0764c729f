// Package testutil provides an in-memory stand-in for the remote wallet
// service, served over httptest with gin.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request is a request observed by the fake service
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into v
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

type wallet struct {
	ID      string
	Name    string
	Balance decimal.Decimal
	Date    string
}

type transaction struct {
	ID          string
	WalletID    string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Description string
	Date        string
	Type        string
}

type failure struct {
	status  int
	message any
}

// WalletServer emulates the wallet service endpoints
type WalletServer struct {
	*httptest.Server

	mu       sync.Mutex
	wallets  map[string]*wallet
	txs      map[string][]transaction
	requests []Request
	failures []failure
	clock    time.Time
}

type serverOptions struct {
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
}

// ServerOption customises a WalletServer
type ServerOption func(*serverOptions)

// WithLogger logs every request the fake service handles
func WithLogger(logger *zap.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = logger }
}

// WithTracerProvider records a server span per request, continuing the
// trace context sent by the client
func WithTracerProvider(tp trace.TracerProvider) ServerOption {
	return func(o *serverOptions) { o.tracerProvider = tp }
}

// NewWalletServer starts a fake service that is closed when the test ends
func NewWalletServer(t testing.TB, opts ...ServerOption) *WalletServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := serverOptions{logger: zap.NewNop(), tracerProvider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &WalletServer{
		wallets: make(map[string]*wallet),
		txs:     make(map[string][]transaction),
		clock:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(o.logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(o.logger, true))
	r.Use(otelgin.Middleware("wallet-service",
		otelgin.WithTracerProvider(o.tracerProvider),
		otelgin.WithPropagators(propagation.TraceContext{})))
	r.Use(cors.Default())
	r.Use(s.record, s.injectFailure)
	r.POST("/setup", s.setup)
	r.GET("/wallet/:id", s.getWallet)
	r.POST("/transact/:id", s.transact)
	r.GET("/transactions", s.transactions)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailNext makes the next request fail with status. message is sent as the
// "message" field of the error body unless it is nil.
func (s *WalletServer) FailNext(status int, message any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, message: message})
}

// Requests returns every request received so far
func (s *WalletServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request. It panics when none arrived.
func (s *WalletServer) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// Seed creates a wallet directly, bypassing HTTP, and returns its id
func (s *WalletServer) Seed(name string, balance string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(name, decimal.RequireFromString(balance)).ID
}

// Balance reports the stored balance of a wallet
func (s *WalletServer) Balance(id string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return decimal.Zero, false
	}
	return w.Balance, true
}

func (s *WalletServer) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()
	c.Next()
}

func (s *WalletServer) injectFailure(c *gin.Context) {
	s.mu.Lock()
	var f *failure
	if len(s.failures) > 0 {
		f = &s.failures[0]
		s.failures = s.failures[1:]
	}
	s.mu.Unlock()

	if f != nil {
		body := gin.H{"statusCode": f.status, "error": http.StatusText(f.status)}
		if f.message != nil {
			body["message"] = f.message
		}
		c.AbortWithStatusJSON(f.status, body)
		return
	}
	c.Next()
}

func (s *WalletServer) setup(c *gin.Context) {
	var req struct {
		Name    string      `json:"name"`
		Balance json.Number `json:"balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(c, "name should not be empty")
		return
	}
	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		if balance, err = decimal.NewFromString(req.Balance.String()); err != nil {
			badRequest(c, "balance must be a number")
			return
		}
	}
	if balance.IsNegative() {
		badRequest(c, "balance must not be negative")
		return
	}

	s.mu.Lock()
	w := s.create(req.Name, balance)
	s.mu.Unlock()
	c.JSON(http.StatusOK, walletJSON(w))
}

func (s *WalletServer) getWallet(c *gin.Context) {
	s.mu.Lock()
	w, ok := s.wallets[c.Param("id")]
	var out gin.H
	if ok {
		out = walletJSON(w)
	}
	s.mu.Unlock()

	if !ok {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *WalletServer) transact(c *gin.Context) {
	var req struct {
		Amount      json.Number `json:"amount"`
		Description string      `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		badRequest(c, "amount must be a number")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[c.Param("id")]
	if !ok {
		notFound(c)
		return
	}
	next := w.Balance.Add(amount)
	if next.IsNegative() {
		badRequest(c, "Insufficient balance")
		return
	}
	w.Balance = next
	tx := s.addTx(w, amount, req.Description)
	c.JSON(http.StatusOK, gin.H{
		"balance":       json.Number(w.Balance.String()),
		"transactionId": tx.ID,
	})
}

func (s *WalletServer) transactions(c *gin.Context) {
	walletID := c.Query("walletId")

	s.mu.Lock()
	_, ok := s.wallets[walletID]
	list := append([]transaction(nil), s.txs[walletID]...)
	s.mu.Unlock()

	if !ok {
		notFound(c)
		return
	}

	total := len(list)
	if c.Query("exportAll") != "true" {
		skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		sortTransactions(list, c.DefaultQuery("sortBy", "date"), c.DefaultQuery("order", "asc"))
		list = page(list, skip, limit)
	}

	out := make([]gin.H, 0, len(list))
	for _, tx := range list {
		out = append(out, gin.H{
			"id":          tx.ID,
			"walletId":    tx.WalletID,
			"amount":      json.Number(tx.Amount.String()),
			"balance":     json.Number(tx.Balance.String()),
			"description": tx.Description,
			"date":        tx.Date,
			"type":        tx.Type,
		})
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "transactions": out})
}

// create and addTx expect s.mu to be held

func (s *WalletServer) create(name string, balance decimal.Decimal) *wallet {
	w := &wallet{ID: uuid.NewString(), Name: name, Balance: balance, Date: s.tick()}
	s.wallets[w.ID] = w
	if balance.IsPositive() {
		s.addTx(w, balance, "Initial balance")
	}
	return w
}

func (s *WalletServer) addTx(w *wallet, amount decimal.Decimal, description string) transaction {
	kind := "CREDIT"
	if amount.IsNegative() {
		kind = "DEBIT"
	}
	tx := transaction{
		ID:          uuid.NewString(),
		WalletID:    w.ID,
		Amount:      amount,
		Balance:     w.Balance,
		Description: description,
		Date:        s.tick(),
		Type:        kind,
	}
	s.txs[w.ID] = append(s.txs[w.ID], tx)
	return tx
}

func (s *WalletServer) tick() string {
	s.clock = s.clock.Add(time.Minute)
	return s.clock.Format(time.RFC3339)
}

func sortTransactions(list []transaction, sortBy, order string) {
	less := func(a, b transaction) bool { return a.Date < b.Date }
	if sortBy == "amount" {
		less = func(a, b transaction) bool { return a.Amount.LessThan(b.Amount) }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if order == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func page(list []transaction, skip, limit int) []transaction {
	if skip < 0 || skip >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return list[skip:end]
}

func walletJSON(w *wallet) gin.H {
	return gin.H{
		"id":      w.ID,
		"name":    w.Name,
		"balance": json.Number(w.Balance.String()),
		"date":    w.Date,
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"statusCode": http.StatusBadRequest,
		"message":    []string{message},
		"error":      "Bad Request",
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"statusCode": http.StatusNotFound,
		"message":    "Wallet not found",
		"error":      "Not Found",
	})
}
