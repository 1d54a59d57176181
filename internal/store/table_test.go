package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrInitCreatesHeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orders.csv")
	tbl, err := LoadOrInit(path, OrderColumns)
	if err != nil {
		t.Fatalf("load or init: %v", err)
	}
	if len(tbl.Rows) != 0 || len(tbl.Header) != len(OrderColumns) {
		t.Fatalf("unexpected table %+v", tbl)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != strings.Join(OrderColumns, ",") {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestLoadTrimsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	body := "\ufeffname , quantity,expiry_date,price_per_unit\nParacetamol,5,,1.00\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Header[0] != "name" || tbl.Header[1] != "quantity" {
		t.Fatalf("header not trimmed: %q", tbl.Header)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing header error")
	}
}

func TestSaveReplacesContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hospitals.csv")
	first := Table{Header: HospitalColumns, Rows: [][]string{{"H1", "City General", "", "", "", ""}}}
	if err := Save(path, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(path, Table{Header: HospitalColumns}); err != nil {
		t.Fatalf("save: %v", err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Rows) != 0 {
		t.Fatalf("rows not replaced: %v", tbl.Rows)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}
