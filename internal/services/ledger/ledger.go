package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
)

// LedgerInterface defines the treasury operations
type LedgerInterface interface {
	Deposit(ctx context.Context, businessID int64, amount int64) error
	Withdraw(ctx context.Context, businessID int64, amount int64) error
	SetFunds(ctx context.Context, businessID int64, amount int64) error
	GetFunds(ctx context.Context, businessID int64) (int64, error)
}

// Ledger moves money in and out of business treasuries. Each mutation is a
// single statement in the repository; the ledger never reads a balance to
// decide whether money moves.
type Ledger struct {
	businesses repositories.BusinessRepository
}

// NewLedger creates a new Ledger
func NewLedger(businesses repositories.BusinessRepository) *Ledger {
	return &Ledger{businesses: businesses}
}

// RoundAmount converts a client-supplied amount to minor units, rounding
// half away from zero. The result must be positive.
func RoundAmount(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount is not a number", entities.ErrInvalidInput)
	}
	rounded := math.Round(amount)
	if rounded <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidInput)
	}
	if rounded >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: amount too large", entities.ErrInvalidInput)
	}
	return int64(rounded), nil
}

// Deposit adds amount to the treasury
func (l *Ledger) Deposit(ctx context.Context, businessID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", entities.ErrInvalidInput)
	}

	ok, err := l.businesses.AddFunds(ctx, businessID, amount)
	if err != nil {
		return fmt.Errorf("failed to deposit into business %d: %w", businessID, err)
	}
	if !ok {
		return fmt.Errorf("%w: business %d", entities.ErrNotFound, businessID)
	}
	return nil
}

// Withdraw removes amount only if the treasury covers it
func (l *Ledger) Withdraw(ctx context.Context, businessID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: withdraw amount must be positive", entities.ErrInvalidInput)
	}

	ok, err := l.businesses.SubtractFunds(ctx, businessID, amount)
	if err != nil {
		return fmt.Errorf("failed to withdraw from business %d: %w", businessID, err)
	}
	if ok {
		return nil
	}

	// Nothing moved; only the error code depends on this read
	if _, err := l.businesses.GetFunds(ctx, businessID); errors.Is(err, entities.ErrNotFound) {
		return fmt.Errorf("%w: business %d", entities.ErrNotFound, businessID)
	}
	return fmt.Errorf("%w: business %d cannot cover %d", entities.ErrInsufficientFunds, businessID, amount)
}

// SetFunds sets an absolute balance, for administrative correction
func (l *Ledger) SetFunds(ctx context.Context, businessID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: funds cannot be negative", entities.ErrInvalidInput)
	}

	ok, err := l.businesses.SetFunds(ctx, businessID, amount)
	if err != nil {
		return fmt.Errorf("failed to set funds of business %d: %w", businessID, err)
	}
	if !ok {
		return fmt.Errorf("%w: business %d", entities.ErrNotFound, businessID)
	}
	return nil
}

// GetFunds returns the balance, 0 if the business does not exist
func (l *Ledger) GetFunds(ctx context.Context, businessID int64) (int64, error) {
	funds, err := l.businesses.GetFunds(ctx, businessID)
	if errors.Is(err, entities.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read funds of business %d: %w", businessID, err)
	}
	return funds, nil
}
