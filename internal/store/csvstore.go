package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"drugtrack/m/domain"
)

// Paths locates the four datasets on disk.
type Paths struct {
	Orders      string
	Hospitals   string
	Inventory   string
	Consumption string
}

// CSVStore keeps every table in its own CSV file. Orders and hospitals are
// created on first load; inventory and consumption are external datasets and
// read as empty when absent.
type CSVStore struct {
	paths Paths

	mu              sync.Mutex
	inventoryHeader []string
}

func NewCSVStore(paths Paths) *CSVStore {
	return &CSVStore{paths: paths}
}

func (s *CSVStore) Load(_ context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot

	orders, err := LoadOrInit(s.paths.Orders, OrderColumns)
	if err != nil {
		return snap, err
	}
	if snap.Orders, err = decodeOrders(orders); err != nil {
		return snap, err
	}

	hospitals, err := LoadOrInit(s.paths.Hospitals, HospitalColumns)
	if err != nil {
		return snap, err
	}
	if snap.Hospitals, err = decodeHospitals(hospitals); err != nil {
		return snap, err
	}

	inventory, err := Load(s.paths.Inventory)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return snap, nil
	case err != nil:
		return snap, err
	}
	if snap.Inventory, err = decodeInventory(inventory); err != nil {
		return snap, err
	}
	s.mu.Lock()
	s.inventoryHeader = inventory.Header
	s.mu.Unlock()
	return snap, nil
}

func (s *CSVStore) SaveOrders(_ context.Context, lines []domain.OrderLine) error {
	if err := Save(s.paths.Orders, encodeOrders(lines)); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func (s *CSVStore) SaveHospitals(_ context.Context, hospitals []domain.Hospital) error {
	if err := Save(s.paths.Hospitals, encodeHospitals(hospitals)); err != nil {
		return fmt.Errorf("save hospitals: %w", err)
	}
	return nil
}

func (s *CSVStore) SaveInventory(_ context.Context, items []domain.InventoryItem) error {
	s.mu.Lock()
	header := s.inventoryHeader
	s.mu.Unlock()
	if err := Save(s.paths.Inventory, encodeInventory(items, header)); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

func (s *CSVStore) Consumption(_ context.Context) ([]domain.ConsumptionRecord, error) {
	t, err := Load(s.paths.Consumption)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeConsumption(t)
}

// ReadInventory decodes an inventory dataset file. Used to seed SQL backends.
func ReadInventory(path string) ([]domain.InventoryItem, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return decodeInventory(t)
}

// ReadConsumption decodes a consumption dataset file.
func ReadConsumption(path string) ([]domain.ConsumptionRecord, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return decodeConsumption(t)
}
