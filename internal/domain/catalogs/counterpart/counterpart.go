// Package counterpart provides the supplier/customer catalog.
// Transaction headers reference a counterpart: the supplier on a purchase,
// the customer on a sale. The reference is optional (walk-in sales).
package counterpart

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
)

// Kind distinguishes suppliers from customers.
type Kind string

const (
	KindSupplier Kind = "supplier"
	KindCustomer Kind = "customer"
)

// Counterpart is a supplier or customer.
type Counterpart struct {
	entity.Catalog

	Kind  Kind   `db:"kind" json:"kind"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`
}

// New creates a counterpart.
func New(code, name string, kind Kind) *Counterpart {
	return &Counterpart{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable.
func (c *Counterpart) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if c.Kind != KindSupplier && c.Kind != KindCustomer {
		return apperror.NewValidation("invalid counterpart kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	return nil
}

// Repository defines storage operations for counterparts.
type Repository interface {
	Create(ctx context.Context, c *Counterpart) error
	Update(ctx context.Context, c *Counterpart) error
	GetByID(ctx context.Context, counterpartID id.ID) (*Counterpart, error)
	List(ctx context.Context, kind *Kind, limit, offset int) ([]*Counterpart, error)
}

// Service provides catalog operations for counterparts.
type Service struct {
	repo Repository
}

// NewService creates a new counterpart service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a counterpart.
func (s *Service) Create(ctx context.Context, c *Counterpart) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create counterpart: %w", err)
	}
	return nil
}

// Update validates and persists changes.
func (s *Service) Update(ctx context.Context, c *Counterpart) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	c.Touch()
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("update counterpart: %w", err)
	}
	return nil
}

// GetByID retrieves a counterpart.
func (s *Service) GetByID(ctx context.Context, counterpartID id.ID) (*Counterpart, error) {
	return s.repo.GetByID(ctx, counterpartID)
}

// List retrieves counterparts, optionally filtered by kind.
func (s *Service) List(ctx context.Context, kind *Kind, limit, offset int) ([]*Counterpart, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, kind, limit, offset)
}
