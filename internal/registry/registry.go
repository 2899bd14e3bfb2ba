// server/internal/registry/registry.go
package registry

import (
	"fmt"

	"equipment-dispatch-api-server/internal/models"
)

// Store is the source of truth for equipment. It is filled once at construction
// and never written afterwards, so concurrent readers need no locking.
type Store struct {
	items []models.Equipment
	byID  map[string]int
}

// New seeds a Store with the given records. Ids must be unique and statuses known.
func New(items []models.Equipment) (*Store, error) {
	s := &Store{
		items: make([]models.Equipment, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	copy(s.items, items)

	for i, eq := range s.items {
		if err := eq.Validate(); err != nil {
			return nil, fmt.Errorf("invalid registry seed: %w", err)
		}
		if _, dup := s.byID[eq.ID]; dup {
			return nil, fmt.Errorf("invalid registry seed: duplicate equipment id %s", eq.ID)
		}
		s.byID[eq.ID] = i
	}
	return s, nil
}

// NewDefault returns a Store seeded with DefaultEquipment.
func NewDefault() *Store {
	s, err := New(DefaultEquipment())
	if err != nil {
		panic(err)
	}
	return s
}

// All returns a copy of every record, in seed order.
func (s *Store) All() []models.Equipment {
	out := make([]models.Equipment, len(s.items))
	copy(out, s.items)
	return out
}

// FindByID looks up a record by exact id.
func (s *Store) FindByID(id string) (models.Equipment, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Equipment{}, false
	}
	return s.items[i], true
}

// Len is the number of records in the store.
func (s *Store) Len() int { return len(s.items) }
