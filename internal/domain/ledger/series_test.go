package ledger

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFlowClass_IsValid(t *testing.T) {
	assert.True(t, FlowIn.IsValid())
	assert.True(t, FlowOut.IsValid())
	assert.False(t, FlowClass("SIDEWAYS").IsValid())
	assert.False(t, FlowClass("").IsValid())
}

func TestSeries_Validate(t *testing.T) {
	valid := testSeries()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Series)
		want   string
	}{
		{"missing owner", func(s *Series) { s.OwnerID = uuid.Nil }, "owner ID is required"},
		{"missing warehouse", func(s *Series) { s.WarehouseID = uuid.Nil }, "warehouse ID is required"},
		{"missing seed type", func(s *Series) { s.SeedTypeID = uuid.Nil }, "seed type ID is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeries_Key(t *testing.T) {
	s := testSeries()
	key := s.Key()
	assert.Equal(t, fmt.Sprintf("%s:%s:%s", s.OwnerID, s.WarehouseID, s.SeedTypeID), key)

	other := testSeries()
	assert.NotEqual(t, key, other.Key())
}
