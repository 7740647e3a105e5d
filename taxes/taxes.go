/*
Package taxes manages flat percentage tax rates.

PURPOSE:
  Tax rates feed invoice/quote totals computation. The set carries one
  hard invariant: exactly one enabled tax is flagged default at any time
  (while any tax exists). Instead of scattering conditional sibling
  updates across create/update handlers, the constraint is modeled as an
  explicit SetDefault(id) store operation that atomically clears all
  other default flags and sets one.

RULES:
  - The first tax created becomes the default.
  - Creating or enabling a tax as default demotes the previous default.
  - Disabling or un-defaulting the current default promotes another
    enabled tax.
  - A tax can never be deleted once created (invoices reference rates).
  - The only remaining tax cannot be disabled.

SEE ALSO:
  - store/sqlite: SQLite-backed Store
  - ledger/totals.go: where rates are applied
*/
package taxes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dasunhq/idurar-erp-crm/money"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a referenced tax is absent or removed.
	ErrNotFound = errors.New("tax not found")

	// ErrDeleteForbidden is returned for any delete attempt; taxes are
	// permanent once created because documents reference their rates.
	ErrDeleteForbidden = errors.New("taxes cannot be deleted after creation")

	// ErrLastTax is returned when disabling or un-defaulting the only tax.
	ErrLastTax = errors.New("cannot disable the only existing tax")
)

// =============================================================================
// MODEL AND STORE
// =============================================================================

type Tax struct {
	ID        string
	Name      string
	Rate      money.Amount // flat percentage
	IsDefault bool
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists taxes. SetDefault is the atomic primitive behind the
// one-default invariant: it clears every other default flag and sets the
// given tax's in a single operation.
type Store interface {
	GetTax(ctx context.Context, id string) (*Tax, error)
	ListTaxes(ctx context.Context) ([]Tax, error)
	InsertTax(ctx context.Context, t *Tax) error
	UpdateTax(ctx context.Context, t *Tax) error
	SetDefaultTax(ctx context.Context, id string) error
}

// =============================================================================
// SERVICE - the only writer of the tax set
// =============================================================================

// Service serializes all tax mutations behind one mutex so the set-wide
// invariant cannot be raced.
type Service struct {
	mu    sync.Mutex
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name      string
	Rate      money.Amount
	IsDefault bool
}

type UpdateInput struct {
	ID        string
	Name      string
	Rate      money.Amount
	IsDefault bool
	Enabled   bool
}

// Create adds a tax. The first tax ever created becomes the default
// regardless of the flag; an explicitly-default tax demotes the previous
// default.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Tax, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListTaxes(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &Tax{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Rate:      in.Rate,
		IsDefault: in.IsDefault || len(existing) == 0,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.InsertTax(ctx, t); err != nil {
		return nil, err
	}
	if t.IsDefault {
		if err := s.store.SetDefaultTax(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SetDefault makes the given tax the single default.
func (s *Service) SetDefault(ctx context.Context, id string) (*Tax, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTax(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetDefaultTax(ctx, t.ID); err != nil {
		return nil, err
	}
	t.IsDefault = true
	return t, nil
}

// Update edits a tax and re-establishes the default invariant:
// demoting or disabling the current default promotes another enabled tax;
// promoting this one demotes the rest.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Tax, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTax(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListTaxes(ctx)
	if err != nil {
		return nil, err
	}
	if (!in.Enabled || !in.IsDefault) && len(all) <= 1 {
		return nil, ErrLastTax
	}

	t.Name = in.Name
	t.Rate = in.Rate
	t.Enabled = in.Enabled
	t.IsDefault = in.IsDefault && in.Enabled
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTax(ctx, t); err != nil {
		return nil, err
	}

	if t.IsDefault {
		if err := s.store.SetDefaultTax(ctx, t.ID); err != nil {
			return nil, err
		}
	} else {
		// The set lost its default; promote another enabled tax.
		if err := s.promoteAny(ctx, t.ID, all); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Delete always fails; the operation exists so callers get a typed error
// rather than a missing route.
func (s *Service) Delete(context.Context, string) error {
	return ErrDeleteForbidden
}

// List returns all taxes.
func (s *Service) List(ctx context.Context) ([]Tax, error) {
	return s.store.ListTaxes(ctx)
}

// Default returns the current default tax, or ErrNotFound when no tax
// exists.
func (s *Service) Default(ctx context.Context) (*Tax, error) {
	all, err := s.store.ListTaxes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].IsDefault {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) promoteAny(ctx context.Context, exceptID string, all []Tax) error {
	for i := range all {
		if all[i].ID != exceptID && all[i].Enabled {
			return s.store.SetDefaultTax(ctx, all[i].ID)
		}
	}
	return nil
}
