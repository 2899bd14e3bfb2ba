package registry

import (
	"sync"
	"testing"

	"equipment-dispatch-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	s := NewDefault()
	require.Equal(t, 5, s.Len())

	eq, ok := s.FindByID("EQ001")
	require.True(t, ok)
	assert.Equal(t, "pump", eq.Type)
	assert.Equal(t, models.StatusAvailable, eq.Status)

	eq, ok = s.FindByID("EQ005")
	require.True(t, ok)
	assert.Equal(t, models.NoMaintenanceRecord, eq.LastMaintenance)
}

func TestFindByIDExactMatch(t *testing.T) {
	s := NewDefault()

	for _, id := range []string{"NOPE", "eq001", "EQ001 ", ""} {
		_, ok := s.FindByID(id)
		assert.False(t, ok, "id %q", id)
	}
}

func TestNewRejectsBadSeed(t *testing.T) {
	_, err := New([]models.Equipment{
		{ID: "A", Status: models.StatusAvailable},
		{ID: "A", Status: models.StatusMaintenance},
	})
	assert.ErrorContains(t, err, "duplicate equipment id A")

	_, err = New([]models.Equipment{{ID: "B", Status: "broken"}})
	assert.ErrorContains(t, err, "unknown status")
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewDefault()

	items := s.All()
	items[0].Name = "mutated"

	eq, _ := s.FindByID("EQ001")
	assert.Equal(t, "Centrifugal Pump", eq.Name)
	assert.Equal(t, DefaultEquipment(), s.All())
}

func TestConcurrentReads(t *testing.T) {
	s := NewDefault()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := s.FindByID("EQ003")
			assert.True(t, ok)
			assert.Len(t, s.All(), 5)
		}()
	}
	wg.Wait()
}
