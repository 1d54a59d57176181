package domain

// Snapshot is the set of mutable tables an operation reads and returns.
type Snapshot struct {
	Hospitals []Hospital
	Orders    []OrderLine
	Inventory []InventoryItem
}

// Clone copies the table slices so the result can be mutated without
// touching s. Timestamps are replaced rather than written through, so the
// pointers are shared.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Hospitals: append([]Hospital(nil), s.Hospitals...),
		Orders:    append([]OrderLine(nil), s.Orders...),
		Inventory: append([]InventoryItem(nil), s.Inventory...),
	}
}
