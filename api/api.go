package api

import (
	"context"
	"io"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
)

// AccountState is the payment-relevant view of an account. It is owned by
// the chain: read fresh on every check, never cached across calls.
type AccountState struct {
	// Wallet balances.
	NativeBalance big.Int
	StableBalance big.Int

	// AvailableFunds is what the account has deposited into the
	// storage-payment escrow and can still spend.
	AvailableFunds big.Int

	// Standing approvals for the storage operator.
	RateAllowance   big.Int
	LockupAllowance big.Int

	// RateUsed is the per-epoch spend currently committed.
	RateUsed big.Int
}

// PriceTable is the network's current storage pricing, atto-tokens.
type PriceTable struct {
	PricePerTiBPerMonth  big.Int
	MinimumPricePerMonth big.Int
	EpochsPerMonth       uint64
}

// MsgReceipt is the landed result of a pushed message.
type MsgReceipt struct {
	ExitOK  bool
	GasUsed int64
	Return  []byte
}

// WalletBalances are the account's token holdings outside the escrow.
type WalletBalances struct {
	Native big.Int
	Stable big.Int
}

// ChainReader reads live payment state. Implementations must not cache;
// callers rely on every call reflecting the current chain head. Reads are
// idempotent and safe to retry.
type ChainReader interface {
	WalletBalances(ctx context.Context, addr address.Address) (WalletBalances, error)
	PaymentAccount(ctx context.Context, addr address.Address) (AccountState, error)
	StoragePrice(ctx context.Context) (PriceTable, error)
}

// ChainWriter submits payment messages and waits for them to land. Pushes
// are not idempotent and must never be retried by callers; see paymgr.
type ChainWriter interface {
	// PushApproval sets the operator's rate and lockup allowances without
	// moving funds.
	PushApproval(ctx context.Context, rate, lockup big.Int) (cid.Cid, error)

	// PushDepositAndApprove moves amount into the escrow and sets both
	// allowances in one atomic on-chain action, so funds can never land
	// without the approvals that make them spendable.
	PushDepositAndApprove(ctx context.Context, amount, rate, lockup big.Int) (cid.Cid, error)

	// WaitMsg blocks until c has landed with the given confidence. The
	// deadline, if any, belongs to ctx; this engine imposes none.
	WaitMsg(ctx context.Context, c cid.Cid, confidence uint64) (*MsgReceipt, error)
}

// UploadOpts carry per-upload storage configuration.
type UploadOpts struct {
	DatasetID string
	CDN       bool
	Metadata  map[string]string
}

// UploadResult identifies the stored piece.
type UploadResult struct {
	PieceCid cid.Cid

	// ProofMsg is the on-chain piece-proof message, when the store submits
	// one.
	ProofMsg *cid.Cid

	Size uint64
}

// FileStore performs the byte-level transfer to the storage network and
// returns the piece identity. Provider selection, proof submission and the
// provider wire protocol are internal to implementations.
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, size uint64, opts UploadOpts) (*UploadResult, error)
}
