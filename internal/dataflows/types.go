package dataflows

import (
	"context"
	"errors"

	"github.com/dyike/QuantumGPT/models"
)

var (
	// ErrSymbolNotFound is returned by a provider that positively knows the
	// symbol does not exist. It is the only failure that surfaces as a nil
	// snapshot instead of mock data.
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrBadStatus      = errors.New("unexpected upstream status")
	ErrMalformed      = errors.New("malformed upstream response")
)

// Provider is a live quote source. Symbols arrive already normalized.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}

// Lookup is what flows and tools depend on.
type Lookup interface {
	Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}
