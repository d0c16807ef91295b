package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Mock objects

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	key, _ := args[0].(string)
	m.seqs[key]++
	return &mockRow{val: m.seqs[key]}
}

func TestNextNumber_Sequential(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextNumber(ctx, cfg, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-00001" {
		t.Errorf("expected INV-2026-00001, got %s", num)
	}

	num, err = svc.NextNumber(ctx, cfg, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-00002" {
		t.Errorf("expected INV-2026-00002, got %s", num)
	}
}

func TestNextNumber_YearResetsCounter(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()
	cfg := DefaultConfig("PO")

	num, err := svc.NextNumber(ctx, cfg, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-2025-00001" {
		t.Errorf("expected PO-2025-00001, got %s", num)
	}

	// The sequence key includes the year, so January starts over.
	num, err = svc.NextNumber(ctx, cfg, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PO-2026-00001" {
		t.Errorf("expected PO-2026-00001, got %s", num)
	}
}

func TestNextNumber_PrefixesIndependent(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	date := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	if _, err := svc.NextNumber(ctx, DefaultConfig("INV"), date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, err := svc.NextNumber(ctx, DefaultConfig("ADJ"), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ADJ-2026-00001" {
		t.Errorf("expected ADJ-2026-00001, got %s", num)
	}
}

func TestNextNumber_PadWidth(t *testing.T) {
	q := &mockQuerier{seqs: map[string]int64{"INV_2026": 99998}}
	svc := New(q)

	num, err := svc.NextNumber(context.Background(), Config{Prefix: "INV", PadWidth: 5}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-99999" {
		t.Errorf("expected INV-2026-99999, got %s", num)
	}

	// Counter overflowing the pad width keeps all digits.
	num, _ = svc.NextNumber(context.Background(), Config{Prefix: "INV", PadWidth: 5}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if num != "INV-2026-100000" {
		t.Errorf("expected INV-2026-100000, got %s", num)
	}
}

func TestNextNumber_RequiresPrefix(t *testing.T) {
	svc := New(&mockQuerier{})

	_, err := svc.NextNumber(context.Background(), Config{}, time.Now())
	if err == nil {
		t.Fatal("expected error for empty prefix")
	}
}
