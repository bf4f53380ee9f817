package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/infrastructure/logging"
	"github.com/JericoFX/advance-manager/internal/infrastructure/metrics"
)

// Operation names reported with consistency failures
const (
	OpDepositFromWallet = "deposit_from_wallet"
	OpWithdrawToWallet  = "withdraw_to_wallet"
)

// Transfers pairs ledger movements with the actor's wallet. The two
// balances share no transaction, so a failed second step is undone by an
// explicit reversal of the first. A failed reversal is reported as
// entities.ErrConsistencyFailure and never retried.
type Transfers struct {
	ledger      LedgerInterface
	wallet      actors.Wallet
	consistency *zap.Logger
	recorder    metrics.Recorder
}

// NewTransfers creates a new Transfers. A nil recorder disables counting.
func NewTransfers(ledger LedgerInterface, wallet actors.Wallet, logger *zap.Logger, recorder metrics.Recorder) *Transfers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Transfers{
		ledger:      ledger,
		wallet:      wallet,
		consistency: logging.Consistency(logger),
		recorder:    recorder,
	}
}

// DepositFromWallet moves amount from the actor's cash into the treasury
func (t *Transfers) DepositFromWallet(ctx context.Context, citizenID string, businessID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", entities.ErrInvalidInput)
	}

	if err := t.wallet.Debit(ctx, citizenID, amount); err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}

	depositErr := t.ledger.Deposit(ctx, businessID, amount)
	if depositErr == nil {
		return nil
	}

	if err := t.wallet.Credit(ctx, citizenID, amount); err != nil {
		return t.fail(OpDepositFromWallet, citizenID, businessID, amount, depositErr, err)
	}
	return depositErr
}

// WithdrawToWallet moves amount from the treasury into the actor's cash
func (t *Transfers) WithdrawToWallet(ctx context.Context, citizenID string, businessID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: withdraw amount must be positive", entities.ErrInvalidInput)
	}

	if err := t.ledger.Withdraw(ctx, businessID, amount); err != nil {
		return err
	}

	creditErr := t.wallet.Credit(ctx, citizenID, amount)
	if creditErr == nil {
		return nil
	}

	if err := t.ledger.Deposit(ctx, businessID, amount); err != nil {
		return t.fail(OpWithdrawToWallet, citizenID, businessID, amount, creditErr, err)
	}
	return fmt.Errorf("failed to credit wallet: %w", creditErr)
}

func (t *Transfers) fail(op, citizenID string, businessID, amount int64, cause, reversalErr error) error {
	t.consistency.Error("compensating action failed, balances diverged",
		zap.String("operation", op),
		zap.String("citizen_id", citizenID),
		zap.Int64("business_id", businessID),
		zap.Int64("amount", amount),
		zap.NamedError("cause", cause),
		zap.NamedError("reversal_error", reversalErr),
	)
	t.recorder.RecordConsistencyFailure(op)
	return fmt.Errorf("%w: %s of %d for business %d: reversal failed: %v (after: %v)",
		entities.ErrConsistencyFailure, op, amount, businessID, reversalErr, cause)
}
