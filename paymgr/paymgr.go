// Package paymgr drives the funding transaction that restores a payment
// account to a sufficient state: either an approval-only message when funds
// are present but allowances are not, or a single combined deposit-and-approve
// message when a top-up is required.
package paymgr

import (
	"context"

	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-filpay/api"
	"github.com/filecoin-project/go-filpay/build"
	"github.com/filecoin-project/go-filpay/types"
)

var log = logging.Logger("paymgr")

// Manager submits funding messages and waits for them to land.
//
// Not safe for concurrent use against the same account: allowance-setting
// messages are not commutative under concurrent nonces, so callers must
// serialize payment attempts per account.
type Manager struct {
	writer api.ChainWriter
}

func NewManager(writer api.ChainWriter) *Manager {
	return &Manager{writer: writer}
}

// EnsureFunded brings the account to a funded, approved state.
//
// No push is ever retried here: re-submission with a stale nonce or a
// duplicate allowance message risks double-spend semantics. Retry is a
// caller decision, and callers must re-read account state first rather than
// assume it.
func (m *Manager) EnsureFunded(ctx context.Context, deposit big.Int, allowancesSufficient bool) (*types.PaymentOutcome, error) {
	if deposit.Nil() {
		deposit = big.Zero()
	}
	if deposit.Sign() < 0 {
		err := types.Errorf(types.KindInvalidInput, "negative deposit %s", deposit)
		return failed(err), err
	}

	if deposit.Sign() == 0 && allowancesSufficient {
		// Normal outcome, not a degenerate one: account is already able to
		// pay for the requested storage.
		return &types.PaymentOutcome{Succeeded: true, Skipped: true}, nil
	}

	var (
		msgCid cid.Cid
		err    error
	)
	if deposit.Sign() == 0 {
		log.Infow("pushing approval-only message", "rate", "unlimited", "lockup", "unlimited")
		msgCid, err = m.writer.PushApproval(ctx, build.UnlimitedAllowance, build.UnlimitedAllowance)
	} else {
		// One atomic action: funds must never land without the allowances
		// that make them spendable, and the user signs once.
		log.Infow("pushing deposit-and-approve message", "deposit", types.AttoUSDFC(deposit).Unitless())
		msgCid, err = m.writer.PushDepositAndApprove(ctx, deposit, build.UnlimitedAllowance, build.UnlimitedAllowance)
	}
	if err != nil {
		err = types.WrapErr(types.KindPaymentFailed, xerrors.Errorf("pushing funding message: %w", err))
		return failed(err), err
	}

	receipt, err := m.writer.WaitMsg(ctx, msgCid, build.MessageConfidence)
	if err != nil {
		err = types.WrapErr(types.KindPaymentFailed, xerrors.Errorf("waiting for funding message %s: %w", msgCid, err))
		return failedWithCid(msgCid, err), err
	}
	if !receipt.ExitOK {
		err = types.Errorf(types.KindPaymentFailed, "funding message %s failed on chain", msgCid)
		return failedWithCid(msgCid, err), err
	}

	log.Infow("funding message landed", "cid", msgCid, "gasUsed", receipt.GasUsed)
	return &types.PaymentOutcome{MsgCid: &msgCid, Succeeded: true}, nil
}

func failed(err error) *types.PaymentOutcome {
	return &types.PaymentOutcome{Succeeded: false, Error: err.Error()}
}

func failedWithCid(c cid.Cid, err error) *types.PaymentOutcome {
	return &types.PaymentOutcome{MsgCid: &c, Succeeded: false, Error: err.Error()}
}
