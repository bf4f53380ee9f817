package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/services/ledger"
)

// Deposit moves cash from the actor's wallet into the business treasury
func (co *Coordinator) Deposit(ctx context.Context, req FundsRequest) Result {
	return co.run(ctx, ActionDeposit, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		amount, err := ledger.RoundAmount(req.Amount)
		if err != nil {
			return nil, "", err
		}
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionFinance); err != nil {
			return nil, "", err
		}
		if err := co.transfers.DepositFromWallet(ctx, c.actor.CitizenID, req.BusinessID, amount); err != nil {
			return nil, "", err
		}
		data, err := co.fundsData(ctx, c, req.BusinessID)
		return data, fmt.Sprintf("deposited %d", amount), err
	})
}

// Withdraw moves money from the business treasury into the actor's wallet
func (co *Coordinator) Withdraw(ctx context.Context, req FundsRequest) Result {
	return co.run(ctx, ActionWithdraw, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		amount, err := ledger.RoundAmount(req.Amount)
		if err != nil {
			return nil, "", err
		}
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionFinance); err != nil {
			return nil, "", err
		}
		if err := co.transfers.WithdrawToWallet(ctx, c.actor.CitizenID, req.BusinessID, amount); err != nil {
			return nil, "", err
		}
		data, err := co.fundsData(ctx, c, req.BusinessID)
		return data, fmt.Sprintf("withdrew %d", amount), err
	})
}

// SetFunds overwrites a treasury balance. Only framework admins may do this.
func (co *Coordinator) SetFunds(ctx context.Context, req SetFundsRequest) Result {
	return co.run(ctx, ActionSetFunds, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if !c.actor.Admin {
			co.recorder.RecordDenied(c.action)
			return nil, "", fmt.Errorf("%w: admin only", entities.ErrPermissionDenied)
		}
		if err := co.ledger.SetFunds(ctx, req.BusinessID, req.Amount); err != nil {
			return nil, "", err
		}
		c.logger.Info("business funds set by admin", zap.Int64("business_id", req.BusinessID), zap.Int64("amount", req.Amount))
		return FundsData{BusinessID: req.BusinessID, Funds: req.Amount}, "funds updated", nil
	})
}

// GetFunds returns the treasury balance
func (co *Coordinator) GetFunds(ctx context.Context, req BusinessRequest) Result {
	return co.run(ctx, ActionGetFunds, req.SessionID, req, func(ctx context.Context, c *call) (any, string, error) {
		if err := co.authorize(ctx, c, req.BusinessID, entities.PermissionFinance); err != nil {
			return nil, "", err
		}
		funds, err := co.ledger.GetFunds(ctx, req.BusinessID)
		if err != nil {
			return nil, "", err
		}
		return FundsData{BusinessID: req.BusinessID, Funds: funds}, "", nil
	})
}

// fundsData reads the balances after a transfer. The transfer already
// happened, so read failures are logged rather than reported.
func (co *Coordinator) fundsData(ctx context.Context, c *call, businessID int64) (FundsData, error) {
	data := FundsData{BusinessID: businessID}
	funds, err := co.ledger.GetFunds(ctx, businessID)
	if err != nil {
		c.logger.Warn("failed to read funds after transfer", zap.Int64("business_id", businessID), zap.Error(err))
	}
	data.Funds = funds
	if actor, ok := co.sessions.ByCitizenID(ctx, c.actor.CitizenID); ok {
		data.Cash = actor.Cash
	}
	return data, nil
}
