package ledger

import (
	"context"
	"time"

	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AvailabilityCache caches the available cleaned weight per series.
// The cached figure is advisory: every withdrawal re-derives
// availability inside its transaction, so a stale read can never
// oversell. Entries are invalidated whenever a posting or withdrawal
// moves a series.
type AvailabilityCache interface {
	// Get returns the cached availability and whether it was present
	Get(ctx context.Context, series ledger.Series) (decimal.Decimal, bool, error)

	// Set stores the availability for a series with a TTL
	Set(ctx context.Context, series ledger.Series, value decimal.Decimal, ttl time.Duration) error

	// Invalidate drops the cached availability for a series
	Invalidate(ctx context.Context, series ledger.Series) error
}
