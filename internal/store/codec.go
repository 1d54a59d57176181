package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"drugtrack/m/domain"
)

var (
	OrderColumns = []string{
		"Order ID", "Order From", "Order Received", "Drug Name", "Quantity",
		"Received", "Confirmed", "Packed", "Dispatched", "Delivered", "Final Status",
	}
	HospitalColumns    = []string{"Hospital ID", "Hospital Name", "Place", "Address", "Phone", "Email"}
	InventoryColumns   = []string{"name", "quantity", "expiry_date", "price_per_unit"}
	ConsumptionColumns = []string{"name", "usage"}
)

var dateLayouts = []string{
	domain.DateLayout,
	domain.TimestampLayout,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	if isBlank(s) {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func parseTimestamp(s string) (*time.Time, error) {
	if isBlank(s) {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.Local).Format(domain.TimestampLayout)
}

// parseQuantity accepts integers and integral floats such as "120.0".
func parseQuantity(s string) (int64, error) {
	if isBlank(s) {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int64(f), nil
}

func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "nat", "none":
		return true
	}
	return false
}

func decodeOrders(t Table) ([]domain.OrderLine, error) {
	idx, err := columnIndex(t.Header, OrderColumns)
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	lines := make([]domain.OrderLine, 0, len(t.Rows))
	for i, row := range t.Rows {
		line, err := decodeOrderRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("orders row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func decodeOrderRow(row []string, idx map[string]int) (domain.OrderLine, error) {
	line := domain.OrderLine{
		OrderID:   cell(row, idx["Order ID"]),
		OrderFrom: cell(row, idx["Order From"]),
		DrugName:  cell(row, idx["Drug Name"]),
	}
	var err error
	if line.OrderReceived, err = parseDate(cell(row, idx["Order Received"])); err != nil {
		return line, err
	}
	if line.Quantity, err = parseQuantity(cell(row, idx["Quantity"])); err != nil {
		return line, err
	}
	for _, status := range domain.Statuses {
		at, err := parseTimestamp(cell(row, idx[string(status)]))
		if err != nil {
			return line, fmt.Errorf("%s: %w", status, err)
		}
		if at != nil {
			line.Stamp(status, *at)
		}
	}
	// The stamps above leave FinalStatus at the last stamped column; the
	// recorded label wins because statuses may be applied out of order.
	line.FinalStatus = ""
	if final := cell(row, idx["Final Status"]); !isBlank(final) {
		status, err := domain.ParseStatus(final)
		if err != nil {
			return line, err
		}
		line.FinalStatus = status
	}
	return line, nil
}

func encodeOrders(lines []domain.OrderLine) Table {
	t := Table{Header: append([]string(nil), OrderColumns...), Rows: make([][]string, 0, len(lines))}
	for _, l := range lines {
		t.Rows = append(t.Rows, []string{
			l.OrderID,
			l.OrderFrom,
			formatDate(l.OrderReceived),
			l.DrugName,
			strconv.FormatInt(l.Quantity, 10),
			formatTimestamp(l.Received),
			formatTimestamp(l.Confirmed),
			formatTimestamp(l.Packed),
			formatTimestamp(l.Dispatched),
			formatTimestamp(l.Delivered),
			string(l.FinalStatus),
		})
	}
	return t
}

func decodeHospitals(t Table) ([]domain.Hospital, error) {
	idx, err := columnIndex(t.Header, HospitalColumns)
	if err != nil {
		return nil, fmt.Errorf("hospitals: %w", err)
	}
	hospitals := make([]domain.Hospital, 0, len(t.Rows))
	for _, row := range t.Rows {
		hospitals = append(hospitals, domain.Hospital{
			ID:      cell(row, idx["Hospital ID"]),
			Name:    cell(row, idx["Hospital Name"]),
			Place:   cell(row, idx["Place"]),
			Address: cell(row, idx["Address"]),
			Phone:   cell(row, idx["Phone"]),
			Email:   cell(row, idx["Email"]),
		})
	}
	return hospitals, nil
}

func encodeHospitals(hospitals []domain.Hospital) Table {
	t := Table{Header: append([]string(nil), HospitalColumns...), Rows: make([][]string, 0, len(hospitals))}
	for _, h := range hospitals {
		t.Rows = append(t.Rows, []string{h.ID, h.Name, h.Place, h.Address, h.Phone, h.Email})
	}
	return t
}

func decodeInventory(t Table) ([]domain.InventoryItem, error) {
	idx, err := columnIndex(t.Header, InventoryColumns)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	known := make(map[string]bool, len(InventoryColumns))
	for _, c := range InventoryColumns {
		known[c] = true
	}
	items := make([]domain.InventoryItem, 0, len(t.Rows))
	for i, row := range t.Rows {
		item := domain.InventoryItem{Name: cell(row, idx["name"])}
		if item.Quantity, err = parseQuantity(cell(row, idx["quantity"])); err != nil {
			return nil, fmt.Errorf("inventory row %d: %w", i+2, err)
		}
		if item.ExpiryDate, err = parseDate(cell(row, idx["expiry_date"])); err != nil {
			return nil, fmt.Errorf("inventory row %d: %w", i+2, err)
		}
		if price := cell(row, idx["price_per_unit"]); !isBlank(price) {
			if item.PricePerUnit, err = decimal.NewFromString(price); err != nil {
				return nil, fmt.Errorf("inventory row %d: invalid price %q", i+2, price)
			}
		}
		for col, name := range t.Header {
			if known[name] {
				continue
			}
			if item.Extra == nil {
				item.Extra = make(map[string]string)
			}
			item.Extra[name] = cell(row, col)
		}
		items = append(items, item)
	}
	return items, nil
}

// encodeInventory writes items using header as the column order. Columns
// named in Extra but absent from header are appended in sorted order.
func encodeInventory(items []domain.InventoryItem, header []string) Table {
	if len(header) == 0 {
		header = InventoryColumns
	}
	header = append([]string(nil), header...)
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	var added []string
	for _, item := range items {
		for name := range item.Extra {
			if !present[name] {
				present[name] = true
				added = append(added, name)
			}
		}
	}
	sort.Strings(added)
	header = append(header, added...)

	t := Table{Header: header, Rows: make([][]string, 0, len(items))}
	for _, item := range items {
		row := make([]string, len(header))
		for i, name := range header {
			switch name {
			case "name":
				row[i] = item.Name
			case "quantity":
				row[i] = strconv.FormatInt(item.Quantity, 10)
			case "expiry_date":
				row[i] = formatDate(item.ExpiryDate)
			case "price_per_unit":
				row[i] = item.PricePerUnit.String()
			default:
				row[i] = item.Extra[name]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func decodeConsumption(t Table) ([]domain.ConsumptionRecord, error) {
	idx, err := columnIndex(t.Header, ConsumptionColumns)
	if err != nil {
		return nil, fmt.Errorf("consumption: %w", err)
	}
	records := make([]domain.ConsumptionRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := domain.ConsumptionRecord{Name: cell(row, idx["name"])}
		if usage := cell(row, idx["usage"]); !isBlank(usage) {
			if rec.Usage, err = strconv.ParseFloat(usage, 64); err != nil {
				return nil, fmt.Errorf("consumption row %d: invalid usage %q", i+2, usage)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
