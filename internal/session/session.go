// Package session holds the wallet the client is currently working with and
// mirrors its id in local storage so it survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/storage"
	werrors "github.com/Aidin1998/wallet_system/pkg/errors"
	"github.com/Aidin1998/wallet_system/pkg/models"
)

// ErrSessionReset is returned by Initialize when the persisted wallet could
// not be fetched and the session was cleared. The caller must run setup again.
var ErrSessionReset = errors.New("session: wallet unavailable, session reset")

const (
	DefaultWalletIDKey    = "walletId"
	DefaultPreferencesKey = "userPreferences"
	DefaultReloadDelay    = 1500 * time.Millisecond
)

// API is the part of the wallet client the session needs
type API interface {
	GetWallet(ctx context.Context, walletID string) models.Response[models.Wallet]
	SetupWallet(ctx context.Context, name string, initialBalance decimal.Decimal) models.Response[models.Wallet]
	UpdateWalletBalance(ctx context.Context, walletID string, amount decimal.Decimal, description string) models.Response[models.BalanceUpdate]
}

// Options tunes a Session. Zero values take the defaults.
type Options struct {
	WalletIDKey    string
	PreferencesKey string
	// ReloadDelay is how long Initialize waits after a reset before calling
	// OnReset. Negative disables the wait.
	ReloadDelay time.Duration
	// OnReset runs after a reset, once the delay has passed
	OnReset func()
}

// Session owns the single active wallet and its persisted id. All state
// changes go through its methods.
type Session struct {
	api    API
	store  storage.Store
	logger *zap.Logger
	opts   Options

	mu      sync.RWMutex
	wallet  *models.Wallet
	loading bool
}

// New creates an empty session
func New(api API, store storage.Store, logger *zap.Logger, opts Options) *Session {
	if opts.WalletIDKey == "" {
		opts.WalletIDKey = DefaultWalletIDKey
	}
	if opts.PreferencesKey == "" {
		opts.PreferencesKey = DefaultPreferencesKey
	}
	if opts.ReloadDelay == 0 {
		opts.ReloadDelay = DefaultReloadDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: api, store: store, logger: logger, opts: opts}
}

// Wallet returns a copy of the held wallet
func (s *Session) Wallet() (models.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil {
		return models.Wallet{}, false
	}
	return *s.wallet, true
}

// Loading reports whether a fetch or setup is in flight
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// PersistedID returns the stored wallet id, or "" when there is none
func (s *Session) PersistedID(ctx context.Context) (string, error) {
	id, err := s.store.Get(ctx, s.opts.WalletIDKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return id, err
}

// Initialize restores the wallet whose id is persisted. Without a persisted
// id it succeeds and holds nothing. When the fetch fails the id and the held
// wallet are dropped, OnReset runs after ReloadDelay and ErrSessionReset is
// returned.
func (s *Session) Initialize(ctx context.Context) error {
	id, err := s.PersistedID(ctx)
	if err != nil {
		return fmt.Errorf("session: read wallet id: %w", err)
	}
	if id == "" {
		return nil
	}

	if s.FetchWallet(ctx, id) {
		return nil
	}

	s.logger.Warn("Persisted wallet could not be fetched, resetting session", zap.String("wallet_id", id))
	if err := s.ClearWallet(ctx); err != nil {
		return err
	}

	if s.opts.ReloadDelay > 0 {
		timer := time.NewTimer(s.opts.ReloadDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrSessionReset, ctx.Err())
		}
	}
	if s.opts.OnReset != nil {
		s.opts.OnReset()
	}
	return ErrSessionReset
}

// FetchWallet loads a wallet and holds it on success
func (s *Session) FetchWallet(ctx context.Context, walletID string) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	w, ok := s.api.GetWallet(ctx, walletID).Value()
	if !ok {
		return false
	}

	s.mu.Lock()
	s.wallet = &w
	s.mu.Unlock()
	return true
}

// SetupWallet creates a wallet and makes it the active one. An empty balance
// means zero. The id is persisted only when the service accepted the wallet.
// The error is non-nil only for a malformed balance or a storage failure.
func (s *Session) SetupWallet(ctx context.Context, name, balance string) (bool, error) {
	initial := decimal.Zero
	if b := strings.TrimSpace(balance); b != "" {
		var err error
		if initial, err = decimal.NewFromString(b); err != nil {
			return false, werrors.Invalid.Explain("initial balance %q is not a number", balance).Wrap(err)
		}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	w, ok := s.api.SetupWallet(ctx, name, initial).Value()
	if !ok {
		return false, nil
	}

	if err := s.store.Set(ctx, s.opts.WalletIDKey, w.ID); err != nil {
		s.logger.Error("Failed to persist wallet id", zap.String("wallet_id", w.ID), zap.Error(err))
		s.mu.Lock()
		s.wallet = &w
		s.mu.Unlock()
		return true, fmt.Errorf("session: persist wallet id: %w", err)
	}

	s.mu.Lock()
	s.wallet = &w
	s.mu.Unlock()
	s.logger.Info("Wallet set up", zap.String("wallet_id", w.ID), zap.String("name", w.Name))
	return true, nil
}

// UpdateBalance applies a signed amount through the service. On success only
// the balance of the held wallet is patched; the wallet is not fetched again.
// It reports false when the call failed or no wallet is held.
func (s *Session) UpdateBalance(ctx context.Context, walletID string, amount decimal.Decimal, description string) bool {
	upd, ok := s.api.UpdateWalletBalance(ctx, walletID, amount, description).Value()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wallet == nil {
		return false
	}
	if s.wallet.ID == walletID {
		s.wallet.Balance = upd.Balance
	} else {
		s.logger.Warn("Balance updated for a wallet that is not held",
			zap.String("wallet_id", walletID), zap.String("held_wallet_id", s.wallet.ID))
	}
	return true
}

// ClearWallet forgets the held wallet and its persisted id
func (s *Session) ClearWallet(ctx context.Context) error {
	s.mu.Lock()
	s.wallet = nil
	s.mu.Unlock()

	if err := s.store.Remove(ctx, s.opts.WalletIDKey); err != nil {
		return fmt.Errorf("session: remove wallet id: %w", err)
	}
	return nil
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
