// Package numerator provides document auto-numbering.
// Numbers are issued from a database sequence table with
// UPDATE ... RETURNING, so they are strictly sequential without gaps,
// as required for invoices and other accounting documents.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal database interface the numerator needs.
// Inside a commit it is the open transaction, so the issued number
// rolls back together with the document.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for the current context.
type QuerierProvider func(ctx context.Context) Querier

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "INV", "PO")
	Prefix string

	// PadWidth is the minimum counter width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 5,
	}
}

// Service issues document numbers.
type Service struct {
	provider QuerierProvider
}

// New creates a numerator backed by a fixed querier.
func New(q Querier) *Service {
	return &Service{provider: func(context.Context) Querier { return q }}
}

// NewWithProvider creates a numerator that resolves its querier per call,
// so number generation participates in the caller's transaction.
func NewWithProvider(provider QuerierProvider) *Service {
	return &Service{provider: provider}
}

// NextNumber issues the next number for the prefix and date.
// Pattern: PREFIX-YEAR-XXXXX (e.g. INV-2026-00042). The counter resets
// yearly because the year is part of the sequence key.
func (s *Service) NextNumber(ctx context.Context, cfg Config, date time.Time) (string, error) {
	if cfg.Prefix == "" {
		return "", fmt.Errorf("numerator: prefix is required")
	}
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = 5
	}

	year := date.Year()
	key := fmt.Sprintf("%s_%d", cfg.Prefix, year)

	var current int64
	err := s.provider(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&current)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, year, cfg.PadWidth, current), nil
}
