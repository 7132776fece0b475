package calendar

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CompositeProvider implements Provider with a fallback strategy
// Primary: an HTTP provider
// Fallback: FileProvider (local file)
type CompositeProvider struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger
}

// NewCompositeProvider creates a new CompositeProvider
func NewCompositeProvider(primary, fallback Provider, logger *zap.Logger) *CompositeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompositeProvider{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Holidays returns the primary's holidays, or the fallback's when the primary fails
func (cp *CompositeProvider) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	holidays, err := cp.primary.Holidays(ctx, year)
	if err == nil {
		return holidays, nil
	}

	if cp.fallback == nil {
		return nil, err
	}

	cp.logger.Warn("Primary holiday provider failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	holidays, fallbackErr := cp.fallback.Holidays(ctx, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}

	return holidays, nil
}
