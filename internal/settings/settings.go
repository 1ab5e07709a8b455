// Package settings holds the user options that sit next to the ledger.
package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// DefaultCurrency is used until the user picks one.
const DefaultCurrency = "CNY"

var ErrEmptyCurrency = errors.New("currency must not be empty")

// Settings is the persisted option set. Currency is a display label only; no
// amounts are converted.
type Settings struct {
	Currency string `json:"currency"`
}

// Default returns the settings a fresh install starts with.
func Default() Settings {
	return Settings{Currency: DefaultCurrency}
}

// Normalize trims the currency and falls back to the default when blank.
func (s Settings) Normalize() Settings {
	s.Currency = strings.TrimSpace(s.Currency)
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	return s
}

// Store loads and saves settings.
type Store interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// Memory keeps settings in process. It is the store of the memory backend.
type Memory struct {
	mu sync.Mutex
	s  Settings
}

func NewMemory(initial Settings) *Memory {
	return &Memory{s: initial.Normalize()}
}

func (m *Memory) LoadSettings(context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *Memory) SaveSettings(_ context.Context, s Settings) error {
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s.Normalize()
	return nil
}
