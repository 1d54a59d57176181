// Package invoice turns an order into a downloadable spreadsheet document.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"drugtrack/m/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName   = "Invoice"
)

type Item struct {
	Drug     string
	Quantity int64
}

type Line struct {
	Drug      string          `json:"drug"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type Invoice struct {
	OrderID   string          `json:"order_id"`
	OrderDate time.Time       `json:"order_date"`
	Hospital  domain.Hospital `json:"hospital"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

// Document is a rendered invoice ready to be served as a download.
type Document struct {
	FileName    string
	ContentType string
	Body        []byte
	Total       decimal.Decimal
}

// Prepare prices items against inventory and attaches the contact details of
// the first hospital named hospitalName. Drugs without a price cost 0.
func Prepare(orderID string, orderDate time.Time, hospitalName string, items []Item, hospitals []domain.Hospital, inventory []domain.InventoryItem) Invoice {
	inv := Invoice{
		OrderID:   orderID,
		OrderDate: orderDate,
		Hospital:  domain.Hospital{Name: hospitalName},
		Total:     decimal.Zero,
	}
	for _, h := range hospitals {
		if h.Name == hospitalName {
			inv.Hospital = h
			break
		}
	}

	prices := make(map[string]decimal.Decimal, len(inventory))
	for _, item := range inventory {
		if _, seen := prices[item.Name]; !seen {
			prices[item.Name] = item.PricePerUnit
		}
	}

	for _, it := range items {
		price, ok := prices[it.Drug]
		if !ok {
			price = decimal.Zero
		}
		total := price.Mul(decimal.NewFromInt(it.Quantity))
		inv.Lines = append(inv.Lines, Line{Drug: it.Drug, Quantity: it.Quantity, UnitPrice: price, Total: total})
		inv.Total = inv.Total.Add(total)
	}
	return inv
}

func FileName(orderID string) string {
	return fmt.Sprintf("invoice_%s.xlsx", orderID)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Render lays the invoice out as a single-sheet workbook: title, hospital
// block, order block, drug table and the grand total line.
func Render(inv Invoice) (Document, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return Document{}, fmt.Errorf("invoice sheet: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}})
	if err != nil {
		return Document{}, fmt.Errorf("invoice style: %w", err)
	}
	headingStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return Document{}, fmt.Errorf("invoice style: %w", err)
	}

	date := ""
	if !inv.OrderDate.IsZero() {
		date = inv.OrderDate.Format(domain.DateLayout)
	}

	w := &sheetWriter{f: f, row: 1}
	w.heading(titleStyle, "Invoice")
	w.skip()
	w.heading(headingStyle, "Hospital Details")
	w.write("Hospital:", inv.Hospital.Name)
	w.write("Address:", inv.Hospital.Address)
	w.write("Phone:", inv.Hospital.Phone)
	w.write("Email:", inv.Hospital.Email)
	w.skip()
	w.heading(headingStyle, "Order Details")
	w.write("Order ID:", inv.OrderID)
	w.write("Order Date:", date)
	w.skip()
	w.heading(headingStyle, "Drug Details")
	w.styled(headingStyle, "Drug Name", "Quantity", "Price/Unit", "Total Price")
	for _, l := range inv.Lines {
		w.write(l.Drug, l.Quantity, money(l.UnitPrice), money(l.Total))
	}
	w.skip()
	w.heading(headingStyle, fmt.Sprintf("Total Bill Value: %s", money(inv.Total)))
	if w.err != nil {
		return Document{}, fmt.Errorf("invoice rows: %w", w.err)
	}
	if err := f.SetColWidth(sheetName, "A", "D", 22); err != nil {
		return Document{}, fmt.Errorf("invoice columns: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return Document{}, fmt.Errorf("write invoice: %w", err)
	}
	return Document{
		FileName:    FileName(inv.OrderID),
		ContentType: ContentType,
		Body:        buf.Bytes(),
		Total:       inv.Total,
	}, nil
}

// sheetWriter appends rows to the invoice sheet and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *sheetWriter) skip() { w.row++ }

func (w *sheetWriter) write(values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheetName, cell, &values); err != nil {
		w.err = err
		return
	}
	w.row++
}

func (w *sheetWriter) styled(style int, values ...interface{}) {
	row := w.row
	w.write(values...)
	if w.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	w.err = w.f.SetCellStyle(sheetName, first, last, style)
}

func (w *sheetWriter) heading(style int, text string) {
	w.styled(style, text)
}
