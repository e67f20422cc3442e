package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/seedledger/backend/internal/domain/shared"
)

// FlowClass distinguishes inbound and outbound bin card numbering.
type FlowClass string

// Flow class values
const (
	FlowIn  FlowClass = "IN"
	FlowOut FlowClass = "OUT"
)

// IsValid checks if the flow class is a known value
func (f FlowClass) IsValid() bool {
	return f == FlowIn || f == FlowOut
}

// Series identifies one bin card: all entries for a seed type held by an
// owner in a warehouse. Grade is an entry attribute, not part of the
// series key; grade-matched balances are derived during replay.
type Series struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	SeedTypeID  uuid.UUID `json:"seed_type_id"`
}

// Validate checks that all series components are present
func (s Series) Validate() error {
	if s.OwnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "owner ID is required")
	}
	if s.WarehouseID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "warehouse ID is required")
	}
	if s.SeedTypeID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "seed type ID is required")
	}
	return nil
}

// Key returns a stable string form used for cache keys and lock names
func (s Series) Key() string {
	return fmt.Sprintf("%s:%s:%s", s.OwnerID, s.WarehouseID, s.SeedTypeID)
}
