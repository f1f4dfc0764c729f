package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/internal/storage"
)

// Preferences are the user's defaults for transaction listings
type Preferences struct {
	PageSize int    `json:"pageSize" validate:"min=1,max=100"`
	SortBy   string `json:"sortBy" validate:"oneof=date amount"`
	Order    string `json:"order" validate:"oneof=asc desc"`
}

// DefaultPreferences match the listing defaults of the wallet service
func DefaultPreferences() Preferences {
	return Preferences{PageSize: 10, SortBy: "date", Order: "asc"}
}

var prefsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the preference values
func (p Preferences) Validate() error {
	return prefsValidator.Struct(p)
}

// Preferences returns the stored preferences. Missing or unreadable values
// yield the defaults.
func (s *Session) Preferences(ctx context.Context) (Preferences, error) {
	raw, err := s.store.Get(ctx, s.opts.PreferencesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("session: read preferences: %w", err)
	}

	p := DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("Ignoring unreadable preferences", zap.Error(err))
		return DefaultPreferences(), nil
	}
	if err := p.Validate(); err != nil {
		s.logger.Warn("Ignoring invalid preferences", zap.Error(err))
		return DefaultPreferences(), nil
	}
	return p, nil
}

// SavePreferences validates and stores p
func (s *Session) SavePreferences(ctx context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("session: invalid preferences: %w", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.opts.PreferencesKey, string(raw))
}
